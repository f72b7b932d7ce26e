// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package hello

// HelloWorld returns the classic greeting
func HelloWorld() string {
	return "Hello, World!"
}
