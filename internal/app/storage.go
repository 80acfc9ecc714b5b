package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/config"
	"github.com/vovakirdan/birthdaywall/internal/store"
	"github.com/vovakirdan/birthdaywall/internal/store/file"
	"github.com/vovakirdan/birthdaywall/internal/store/sqlite"
)

const (
	messagesDocument    = "messages"
	celebrationDocument = "celebration"
)

// Storage holds the two persisted documents for the configured driver.
type Storage struct {
	Messages    *store.Durable[[]store.Message]
	Celebration *store.Durable[store.Celebration]

	db *sqlite.SQLiteStore
}

func countMessages(msgs []store.Message) int { return len(msgs) }

// OpenStorage opens the documents for cfg.Storage.Driver.
func OpenStorage(cfg *config.Config, logger *zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		logger.Info().
			Str("messages", cfg.Storage.MessagesPath).
			Str("celebration", cfg.Storage.CelebrationPath).
			Msg("using file storage")
		return &Storage{
			Messages:    file.Document(cfg.Storage.MessagesPath, cfg.Storage.BackupSuffix, countMessages, logger),
			Celebration: file.Document[store.Celebration](cfg.Storage.CelebrationPath, cfg.Storage.BackupSuffix, nil, logger),
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		logger.Info().Str("db_path", cfg.Storage.DatabasePath).Msg("database initialized")
		return &Storage{
			Messages:    sqlite.Document(db, messagesDocument, cfg.Storage.BackupSuffix, countMessages, logger),
			Celebration: sqlite.Document[store.Celebration](db, celebrationDocument, cfg.Storage.BackupSuffix, nil, logger),
			db:          db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close releases the database handle, if any.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
