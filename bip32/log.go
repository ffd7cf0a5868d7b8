// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bip32

import "github.com/btcsuite/btclog"

// log is the package-level logger used to report the rare invalid-child
// retries a derivation step can hit; it is disabled by default until a
// caller wires up a concrete backend with UseLogger.
var log btclog.Logger

// DisableLog disables all library log output. Logging is disabled by
// default until UseLogger is called.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}
