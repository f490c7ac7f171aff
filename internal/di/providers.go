package di

import (
	"log"
	"net/http"

	"gorm.io/gorm"

	"farmstand/internal/auth"
	"farmstand/internal/config"
	"farmstand/internal/dbmongo"
	"farmstand/internal/message"
	"farmstand/internal/relay"
	"farmstand/internal/user"
)

// Application is the assembled service, ready for main to run.
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Mongo  *dbmongo.MongoClient
	Hub    *relay.Hub
	Auth   auth.Service
	Router http.Handler
}

// ProvideMongo connects to the avatar store when configured. A nil
// client disables the media endpoints without failing startup.
func ProvideMongo(cfg *config.Config) (*dbmongo.MongoClient, error) {
	if !cfg.Mongo.Enabled {
		log.Println("mongo not configured, avatar storage disabled")
		return nil, nil
	}
	return dbmongo.NewMongoConnection(cfg)
}

func ProvideAvatarStorage(mc *dbmongo.MongoClient) user.AvatarStore {
	if mc == nil {
		return nil
	}
	return dbmongo.NewAvatarStorage(mc)
}

// ProvideNotifier binds the relay hub to the messaging service.
func ProvideNotifier(hub *relay.Hub) message.Notifier {
	return hub
}
