package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/db"
	"github.com/debemdeboas/the-notes/internal/logger"
	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/store"
	"github.com/debemdeboas/the-notes/internal/util"
)

var importExtensions = []string{".md", ".txt"}

// main imports a directory of text files into the configured note store.
func main() {
	path := flag.String("path", "", "Path to the directory containing .md or .txt files")
	dryRun := flag.Bool("dry-run", false, "Print what would be imported without writing")
	flag.Parse()

	log := logger.New("info")
	config.SetLogger(log)
	db.SetLogger(log)
	store.SetLogger(log)

	if *path == "" {
		log.Fatal().Msg("The --path flag is required")
	}

	config.LoadEnv()
	if err := config.LoadConfig(config.ConfigPath()); err != nil {
		log.Fatal().Err(err).Msgf(config.ErrLoadConfigFmt, err)
	}
	creds, err := config.LoadStoreCredentials()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot import without note store credentials")
	}

	ctx := context.Background()
	noteStore, err := store.New(ctx, creds, config.AppConfig.Store)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrInitializeStoreFmt, err)
	}
	if c, ok := noteStore.(store.Closer); ok {
		defer c.Close()
	}

	imported, failed := importDir(ctx, log, noteStore, *path, *dryRun)
	log.Info().Int("imported", imported).Int("failed", failed).Msg("Import finished")
	if failed > 0 {
		os.Exit(1)
	}
}

// importDir imports every matching file in dir and reports how many were
// imported and how many failed.
func importDir(ctx context.Context, log zerolog.Logger, s store.NoteStore, dir string, dryRun bool) (imported, failed int) {
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Error().Err(err).Str("path", dir).Msg("Error reading directory")
		return 0, 1
	}

	for _, file := range files {
		if file.IsDir() || !hasImportExtension(file.Name()) {
			continue
		}

		in, err := readNote(filepath.Join(dir, file.Name()))
		if err != nil {
			log.Error().Err(err).Str("file", file.Name()).Msg("Error processing file")
			failed++
			continue
		}

		if dryRun {
			fmt.Printf("%s -> %q (%d characters)\n", file.Name(), in.Title, len([]rune(in.Content)))
			imported++
			continue
		}

		note, err := s.Insert(ctx, in)
		if err != nil {
			log.Error().Err(err).Str("file", file.Name()).Msg("Error saving note")
			failed++
			continue
		}
		log.Info().Str("file", file.Name()).Str("note_id", string(note.ID)).Msg("Successfully imported note")
		imported++
	}
	return imported, failed
}

func hasImportExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range importExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// readNote builds a note from a file: the title comes from the first heading
// or line, falling back to the file name. Both fields are cut to the store
// limits.
func readNote(path string) (model.NoteInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.NoteInput{}, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	title := util.FirstHeading(text)
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	in := model.NoteInput{
		Title:   util.Truncate(strings.TrimSpace(title), model.MaxTitleLength),
		Content: util.Truncate(text, model.MaxContentLength),
	}
	return in, in.Validate()
}
