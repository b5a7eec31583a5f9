package main

import (
	cmd "github.com/compat-todo/compat-todo/cmd/compat-todo"
	"github.com/compat-todo/compat-todo/data"
	"github.com/compat-todo/compat-todo/internal/assets"
)

func main() {
	assets.UpdateData(&data.Templates)
	cmd.Execute()
}
