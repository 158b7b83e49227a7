// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

// laborspec composes, inspects and checks the chain specs of Labor networks.
// To use, run "go build -o ./bin/laborspec ./tools/laborspec" and "./bin/laborspec build-spec --chain dev"
package main

import (
	"github.com/labornetwork/labor-node/tools/laborspec/internal/cmd"
)

func main() {
	cmd.Execute()
}
