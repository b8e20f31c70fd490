package utils

import (
	"github.com/rs/zerolog/log"

	"book-catalog-service/internal/models"
)

// ExportData ships audit entries to the external sink. The sink is currently
// the application log; swap with actual calls when the sink exists.
func ExportData(logs []models.AuditLog) error {
	for _, entry := range logs {
		log.Info().
			Time("timestamp", entry.Timestamp).
			Str("entity", entry.Entity).
			Str("action", entry.Action).
			Str("id", entry.ID.Hex()).
			Msg("audit export")
	}
	return nil
}
