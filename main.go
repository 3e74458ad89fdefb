package main

import "github.com/Fusyong/youdaoocr/cmd"

func main() {
	cmd.Execute()
}
