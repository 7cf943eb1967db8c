package main

import "github.com/vahti-ci/vahti/cmd/vahti/internal"

func main() {
	internal.Execute()
}
