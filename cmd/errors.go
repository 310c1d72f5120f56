// SPDX-License-Identifier: Apache-2.0

package cmd

import "errors"

var errStoreNotInitialized = errors.New("reqbench store is not initialized, run 'reqbench init' to initialize")
