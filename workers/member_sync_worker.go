package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"volley-predict-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromProfile matches the JSON the Profile Service returns for
// changed users.
type MirroredUserFromProfile struct {
	ExternalID string     `json:"external_id"`
	Username   string     `json:"username"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MemberSyncWorker mirrors Profile Service users into member_profiles so
// group listings and standings can show usernames without a cross-service
// call per request. User management itself lives entirely in the Profile
// Service.
type MemberSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewMemberSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *MemberSyncWorker {
	return &MemberSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *MemberSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Member Sync Worker (profile-service → member_profiles)…")
	go w.run(ctx)
}

func (w *MemberSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial member sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Member sync worker stopped.")
			return
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSyncTime()); err != nil {
				log.Printf("❌ Member sync batch failed: %v", err)
			}
		}
	}
}

// lastSyncTime is the newest profile update we already mirrored.
func (w *MemberSyncWorker) lastSyncTime() time.Time {
	var last time.Time
	w.db.Model(&models.MemberProfile{}).Select("COALESCE(MAX(updated_at), '0001-01-01')").Scan(&last)
	return last
}

func (w *MemberSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	u, err := url.Parse(w.baseURL + w.endpointPath)
	if err != nil {
		return fmt.Errorf("failed to parse profile service URL: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call profile service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Users []MirroredUserFromProfile `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}
	if len(response.Users) == 0 {
		return nil
	}

	profiles := make([]models.MemberProfile, 0, len(response.Users))
	for _, u := range response.Users {
		if u.ExternalID == "" {
			continue
		}
		profiles = append(profiles, models.MemberProfile{
			ExternalUserID: u.ExternalID,
			Username:       u.Username,
			AvatarURL:      u.AvatarURL,
			LastSeen:       u.LastSeen,
		})
	}
	if len(profiles) == 0 {
		return nil
	}

	if err := w.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "avatar_url", "last_seen", "updated_at",
		}),
	}).Create(&profiles).Error; err != nil {
		return fmt.Errorf("failed to upsert %d profile(s): %w", len(profiles), err)
	}

	log.Printf("✅ Mirrored %d member profile(s)", len(profiles))
	return nil
}
