// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package main

import (
	"fmt"

	"github.com/mattermost/agent-resolver/pkg/hello"
)

func main() {
	fmt.Println(hello.HelloWorld())
}
