// Command bookclub runs the book club guard admin API and its maintenance
// commands.
//
//	@title			Book Club Guard Admin API
//	@version		1.0
//	@description	Message moderation, channel rules and buyer access validation for a paid book club.
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-bookclub-guard/internal/cli"
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	if p := os.Getenv("BOOKCLUB_ENV_FILE"); p != "" {
		if err := godotenv.Overload(p); err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("could not read env file")
		}
	}
	cli.Execute(context.Background())
}
