package main

import "github.com/minishell/minish/cmd"

func main() {
	cmd.Execute()
}
