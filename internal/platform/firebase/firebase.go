package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebasesdk "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Firestore holds the Admin SDK client used by the firestore campaign store.
type Firestore struct {
	Client *firestore.Client
}

// Connect initializes the Firebase app for projectID. Without a credentials
// path the SDK falls back to application default credentials, which is
// also how the Firestore emulator is reached (FIRESTORE_EMULATOR_HOST).
func Connect(ctx context.Context, projectID string, credentialsPath string, logger *slog.Logger) (*Firestore, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	var opts []option.ClientOption
	if path := strings.TrimSpace(credentialsPath); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("firebase credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentialsFile(path))
	}

	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	if logger != nil {
		logger.Info("firestore connected",
			"event", "firestore_connected",
			"module", "internal/platform/firebase",
			"layer", "platform",
			"project_id", projectID,
		)
	}
	return &Firestore{Client: client}, nil
}

func (f *Firestore) Close() error {
	if f == nil || f.Client == nil {
		return nil
	}
	return f.Client.Close()
}
