package campaign

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/models"
)

// Draft is a campaign being authored
type Draft struct {
	Name               string
	Message            string
	IntervalMinutes    int
	MaxMessagesPerHour int
	CreatedBy          string
	Image              *bulkapi.Attachment
}

// Validate checks the draft against the active recipients
func (d *Draft) Validate(active models.CandidateList) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(d.Message) == "" {
		return ErrMessageRequired
	}
	if len(active) == 0 {
		return ErrNoRecipients
	}
	if d.IntervalMinutes <= 0 || d.MaxMessagesPerHour <= 0 {
		return ErrInvalidSchedule
	}
	return nil
}

// request builds the creation form for the draft
func (d *Draft) request(active models.CandidateList, filters any) *bulkapi.CreateCampaignRequest {
	return &bulkapi.CreateCampaignRequest{
		Name:               strings.TrimSpace(d.Name),
		Message:            d.Message,
		UserIDs:            active.IDs(),
		Filters:            filters,
		IntervalMinutes:    d.IntervalMinutes,
		MaxMessagesPerHour: d.MaxMessagesPerHour,
		CreatedBy:          d.CreatedBy,
		Image:              d.Image,
	}
}

// LoadImage reads an image attachment from path, checking its size and
// sniffed content type.
func LoadImage(path string, maxBytes int64, types []string) (*bulkapi.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrImageTooLarge, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	att := &bulkapi.Attachment{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	if err := CheckImage(att, maxBytes, types); err != nil {
		return nil, err
	}
	return att, nil
}

// CheckImage validates an attachment already in memory
func CheckImage(att *bulkapi.Attachment, maxBytes int64, types []string) error {
	if maxBytes > 0 && int64(len(att.Data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes, max %d", ErrImageTooLarge, len(att.Data), maxBytes)
	}
	ct := att.ContentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	if !strings.HasPrefix(ct, "image/") || !slices.Contains(types, ct) {
		return fmt.Errorf("%w: %s", ErrImageType, att.ContentType)
	}
	return nil
}
