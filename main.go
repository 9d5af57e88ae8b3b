/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "polyglot/cmd"

func main() {
	cmd.Execute()
}
