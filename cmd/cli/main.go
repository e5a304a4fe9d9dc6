package main

import "github.com/kstmt/x86line/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
