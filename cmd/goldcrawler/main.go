package main

import (
	"github.com/trogers1052/gold-quote-crawler/cmd/goldcrawler/cmd"
)

func main() {
	cmd.Execute()
}
