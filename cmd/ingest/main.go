package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"aura-support-be/internal/bootstrap"
	"aura-support-be/internal/config"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/repository/implementation"
	"aura-support-be/internal/service"
	"aura-support-be/pkg/database"

	"github.com/fatih/color"
)

var (
	dir    = flag.String("dir", "./manuals", "Directory of .txt and .md support documents")
	prefix = flag.String("prefix", "", "Optional prefix for document ids")
)

func main() {
	flag.Parse()

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		fmt.Println(red("DB_CONNECTION_STRING is not set; ingestion needs the Postgres knowledge store"))
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Connection, false, database.DefaultPoolConfig())
	if err != nil {
		fmt.Println(red("Failed to connect to database:"), err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	ingest := service.NewKnowledgeIngestService(
		implementation.NewKnowledgeChunkRepository(db),
		bootstrap.NewEmbeddingProvider(cfg, log),
		nil,
		cfg.Conversation.ChunkSize,
		cfg.Conversation.ChunkOverlap,
		log,
	)

	files, err := collectDocuments(*dir)
	if err != nil {
		fmt.Println(red("Failed to read documents:"), err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println(red("No .txt or .md documents found in"), *dir)
		os.Exit(1)
	}

	fmt.Printf("Ingesting %d documents from %s\n", len(files), cyan(*dir))

	ctx := context.Background()
	failed := 0
	for _, path := range files {
		docId, err := documentId(*dir, path, *prefix)
		if err != nil {
			failed++
			fmt.Println(red("  FAIL"), path, err)
			continue
		}

		text, err := os.ReadFile(path)
		if err != nil {
			failed++
			fmt.Println(red("  FAIL"), docId, err)
			continue
		}

		chunks, err := ingest.IngestDocument(ctx, docId, string(text))
		if err != nil {
			failed++
			fmt.Println(red("  FAIL"), docId, err)
			continue
		}
		fmt.Printf("%s %s (%d chunks)\n", green("  OK  "), docId, chunks)
	}

	if failed > 0 {
		fmt.Println(red(fmt.Sprintf("%d of %d documents failed", failed, len(files))))
		os.Exit(1)
	}
	fmt.Println(green("Knowledge base ready"))
}

func collectDocuments(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// documentId is the slash separated path below root, so re-running the
// ingestion replaces documents instead of duplicating them.
func documentId(root, path, prefix string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return prefix + filepath.ToSlash(rel), nil
}
