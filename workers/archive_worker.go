// workers/archive_worker.go
package workers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"agent-arena/models"
	"agent-arena/utils"

	"gorm.io/gorm"
)

// ArchiveWorker drains completed match ids and uploads each match's full
// turn log to R2 as a JSON document. Failures are logged and left for the
// scheduler's re-enqueue sweep — the archived_at marker only flips after a
// successful upload.
type ArchiveWorker struct {
	DB    *gorm.DB
	queue chan string
}

func NewArchiveWorker(db *gorm.DB, queueSize int) *ArchiveWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &ArchiveWorker{
		DB:    db,
		queue: make(chan string, queueSize),
	}
}

// Queue is handed to the match service as its completion sink.
func (w *ArchiveWorker) Queue() chan<- string {
	return w.queue
}

// Run consumes the queue until ctx is cancelled.
func (w *ArchiveWorker) Run(ctx context.Context) {
	log.Println("Starting turn-log archive worker...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Archive worker stopped")
			return
		case matchID := <-w.queue:
			if err := w.archiveMatch(matchID); err != nil {
				log.Printf("[ARCHIVE] failed to archive match %s: %v", matchID, err)
			}
		}
	}
}

// matchArchive is the uploaded document shape.
type matchArchive struct {
	MatchID    string           `json:"match_id"`
	Name       string           `json:"name"`
	GameTypeID string           `json:"game_type_id"`
	TotalGames int              `json:"total_games"`
	WinnerID   *string          `json:"winner_id,omitempty"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	Turns      []models.TurnLog `json:"turns"`
}

func (w *ArchiveWorker) archiveMatch(matchID string) error {
	var match models.Match
	if err := w.DB.First(&match, "id = ?", matchID).Error; err != nil {
		return err
	}
	if match.Status != models.MatchCompleted || match.ArchivedAt != nil {
		return nil // cancelled or already archived, nothing to do
	}

	var turns []models.TurnLog
	if err := w.DB.Where("match_id = ?", matchID).Order("i_turn asc").Find(&turns).Error; err != nil {
		return err
	}

	doc := matchArchive{
		MatchID:    match.ID,
		Name:       match.Name,
		GameTypeID: match.GameTypeID,
		TotalGames: match.TotalGames,
		WinnerID:   match.WinnerID,
		StartTime:  match.StartTime,
		EndTime:    match.EndTime,
		Turns:      turns,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	key := "archives/" + match.Slug + "-" + match.ID + ".json"
	url, err := utils.UploadJSONToR2(body, key)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := w.DB.Model(&match).Update("archived_at", now).Error; err != nil {
		return err
	}
	log.Printf("✅ Archived match %s -> %s", match.Name, url)
	return nil
}
