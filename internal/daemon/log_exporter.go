package daemon

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"book-catalog-service/internal/models"
	"book-catalog-service/internal/utils"
)

type LogExporter struct {
	Coll     *mongo.Collection
	Interval time.Duration
}

func (l *LogExporter) InitLogExporter() {
	interval := l.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}

	go func() {
		for {
			res, err := l.Coll.Find(context.Background(), bson.M{"exported": false})
			if err != nil {
				time.Sleep(interval)
				continue
			}

			var logs []models.AuditLog
			_ = res.All(context.Background(), &logs)

			if len(logs) > 0 {
				_ = utils.ExportData(logs)
				updateIds := []primitive.ObjectID{}

				for i := 0; i < len(logs); i++ {
					updateIds = append(updateIds, logs[i].ID)
				}

				l.Coll.UpdateMany(context.Background(), bson.M{"_id": bson.M{"$in": updateIds}}, bson.M{"$set": bson.M{"exported": true}})
			}
			time.Sleep(interval)
		}
	}()
}
