package s3Upload

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	logger     = logger_i.NewLogger("s3_upload")
	unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)
)

type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type UploadTicket struct {
	UploadURL string
	FileKey   string
	ExpiresAt time.Time
}

type Presigner struct {
	api    PresignAPI
	bucket string
	expiry time.Duration
}

func New(cfg aws.Config, bucket string) *Presigner {
	return NewFromAPI(s3.NewPresignClient(s3.NewFromConfig(cfg)), bucket)
}

func NewFromAPI(api PresignAPI, bucket string) *Presigner {
	return &Presigner{api: api, bucket: bucket, expiry: config.UploadURLExpiry}
}

// IssueUploadURL returns a PUT URL for a fresh, collision-resistant key in the upload bucket.
func (p *Presigner) IssueUploadURL(ctx context.Context, fileName, fileType string) (UploadTicket, error) {
	name := SanitizeFileName(fileName)
	if name == "" {
		return UploadTicket{}, fmt.Errorf("%w: fileName is required", commonModels.ErrValidation)
	}
	if p.bucket == "" {
		return UploadTicket{}, fmt.Errorf("%w: no upload bucket configured", commonModels.ErrValidation)
	}

	key := uuid.NewString() + "_" + name
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if fileType != "" {
		input.ContentType = aws.String(fileType)
	}

	req, err := p.api.PresignPutObject(ctx, input, s3.WithPresignExpires(p.expiry))
	if err != nil {
		logger.FromContext(ctx).Error("could not presign upload", "key", key, "error", err)
		return UploadTicket{}, fmt.Errorf("%w: presign: %w", commonModels.ErrTransport, err)
	}
	return UploadTicket{
		UploadURL: req.URL,
		FileKey:   key,
		ExpiresAt: time.Now().Add(p.expiry).UTC(),
	}, nil
}

// SanitizeFileName keeps the base name and replaces anything outside [a-zA-Z0-9_.-] with '_'.
func SanitizeFileName(fileName string) string {
	name := strings.TrimSpace(fileName)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return unsafeName.ReplaceAllString(name, "_")
}
