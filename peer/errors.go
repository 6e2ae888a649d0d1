package peer

import "errors"

// ErrNoSession is returned when encrypt/decrypt is attempted on a peer that
// has never had a session installed.
var ErrNoSession = errors.New("peer: no session installed")
