// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package db

import "time"

// Config is the config for database
type Config struct {
	DbPath string `yaml:"dbPath"`
	// NumRetries is the number of retries
	NumRetries uint8 `yaml:"numRetries"`
	// Compressor is the compression used on stored chain specs
	Compressor string `yaml:"compressor"`
	// OpenTimeout is how long to wait for the file lock of the bolt file
	OpenTimeout time.Duration `yaml:"openTimeout"`
	// ReadOnly is set db to be opened in read only mode
	ReadOnly bool `yaml:"readOnly"`
}

// DefaultConfig returns the default config
var DefaultConfig = Config{
	NumRetries:  3,
	Compressor:  "Snappy",
	OpenTimeout: 5 * time.Second,
}
