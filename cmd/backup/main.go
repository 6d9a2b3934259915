package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"tecnoloc-diag/storage"
)

const backupPrefix = "backups/"

// BackupConfig wird getrennt von der Serverkonfiguration geladen, damit der Job
// einen eigenen Bucket und eigene Zugangsdaten nutzen kann.
type BackupConfig struct {
	PostgresHost     string        `envconfig:"POSTGRES_HOST" required:"true"`
	PostgresUser     string        `envconfig:"POSTGRES_USER" required:"true"`
	PostgresPassword string        `envconfig:"POSTGRES_PASSWORD" required:"true"`
	PostgresDB       string        `envconfig:"POSTGRES_DB" required:"true"`
	BackupBucket     string        `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	BackupEndpoint   string        `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	BackupAccessKey  string        `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	BackupSecretKey  string        `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	BackupRegion     string        `envconfig:"BACKUP_S3_REGION" required:"true"`
	KeepBackups      int           `envconfig:"KEEP_BACKUPS" default:"4"`
	Timeout          time.Duration `envconfig:"BACKUP_TIMEOUT" default:"30m"`
}

func (c BackupConfig) storageOptions() storage.Options {
	return storage.Options{
		URL:    c.BackupEndpoint,
		Region: c.BackupRegion,
		Key:    c.BackupAccessKey,
		Secret: c.BackupSecretKey,
		Bucket: c.BackupBucket,
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starting backup...")

	var cfg BackupConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// 1. Datenbank-Dump erstellen
	dumpData, err := createDump(ctx, cfg)
	if err != nil {
		logging.Fatal("Database dump failed", zap.Error(err))
	}

	// 2. S3-Store erstellen
	store, err := storage.NewS3Store(ctx, cfg.storageOptions())
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}

	// 3. Backup hochladen
	key := backupKey(time.Now())
	if _, err := store.Upload(ctx, key, dumpData, "application/gzip"); err != nil {
		logging.Fatal("Backup upload failed", zap.Error(err))
	}
	logging.Info("Backup uploaded", zap.String("bucket", cfg.BackupBucket), zap.String("key", key), zap.Int("bytes", len(dumpData)))

	// 4. Alte Backups rotieren
	deleted, err := rotateBackups(ctx, store, cfg.KeepBackups, logging)
	if err != nil {
		logging.Fatal("Backup rotation failed", zap.Error(err))
	}

	logging.Info("Backup finished", zap.Int("rotated", deleted))
}

// backupKey liefert backups/backup-<UTC-Zeitstempel>.sql.gz.
func backupKey(now time.Time) string {
	return fmt.Sprintf("%sbackup-%s.sql.gz", backupPrefix, now.UTC().Format("2006-01-02T15-04-05Z"))
}

func createDump(ctx context.Context, cfg BackupConfig) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", cfg.PostgresHost,
		"-U", cfg.PostgresUser,
		"-d", cfg.PostgresDB,
		"-w", // Passwort wird über PGPASSWORD bereitgestellt
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", cfg.PostgresPassword))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	data, err := gzipStream(stdout)
	if err != nil {
		_ = cmd.Wait()
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func gzipStream(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, r); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rotateBackups behält die neuesten keep Backups. Fehler beim Löschen einzelner Objekte
// werden nur geloggt.
func rotateBackups(ctx context.Context, store storage.ObjectStore, keep int, logging *zap.Logger) (int, error) {
	objects, err := store.List(ctx, backupPrefix)
	if err != nil {
		return 0, err
	}

	if len(objects) <= keep {
		logging.Info("Nothing to rotate", zap.Int("backups", len(objects)), zap.Int("keep", keep))
		return 0, nil
	}

	storage.SortNewestFirst(objects)

	deleted := 0
	for _, obj := range objects[keep:] {
		logging.Info("Deleting old backup", zap.String("key", obj.Key))
		if err := store.Delete(ctx, obj.Key); err != nil {
			logging.Warn("Failed to delete backup", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
