// pizzabot answers questions about the Pizzaria Delícia menu.
package main

import (
	"context"
	"os"

	"github.com/pizzabot/pizzabot/internal/cli/pizzabot"
)

func main() {
	if err := pizzabot.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
