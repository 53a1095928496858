package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	appconfig "shootdesk-backend/internal/config"
	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadURLExpiry = 15 * time.Minute

// DeliverableKind selects which link an upload is meant for
type DeliverableKind string

const (
	DeliverableQC  DeliverableKind = "qc"
	DeliverableRaw DeliverableKind = "raw"
)

// Valid reports whether k is a known deliverable kind
func (k DeliverableKind) Valid() bool {
	switch k {
	case DeliverableQC, DeliverableRaw:
		return true
	}
	return false
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Kind        DeliverableKind `json:"kind"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ObjectURL string `json:"object_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// DeliverableService hands out pre-signed S3 uploads for shoot deliverables
type DeliverableService struct {
	store        *repository.Store
	presign      presigner
	bucket       string
	region       string
	endpoint     string
	usePathStyle bool
}

// NewDeliverableService creates a new deliverable service
func NewDeliverableService(ctx context.Context, store *repository.Store, cfg appconfig.AWSConfig) (*DeliverableService, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &DeliverableService{
		store:        store,
		presign:      s3.NewPresignClient(client),
		bucket:       cfg.S3Bucket,
		region:       cfg.Region,
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		usePathStyle: cfg.UsePathStyle,
	}, nil
}

// RequestUpload returns a pre-signed PUT URL for a deliverable of the caller's completed shoot.
// The object URL is what the photographer later submits as the QC or raw link.
func (s *DeliverableService) RequestUpload(ctx context.Context, session *Session, shootID string, req UploadRequest) (*UploadResponse, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	if !session.IsPhotographer() {
		return nil, &AuthorizationError{Reason: "only photographers can upload deliverables"}
	}
	if req.Kind == "" {
		req.Kind = DeliverableQC
	}
	if !req.Kind.Valid() {
		return nil, validationf("kind", "kind must be %q or %q", DeliverableQC, DeliverableRaw)
	}
	if s.bucket == "" {
		return nil, &BackendError{Op: "request upload", Err: fmt.Errorf("no S3 bucket configured")}
	}

	shoot, err := s.store.Shoots.GetByID(ctx, shootID)
	if err != nil {
		return nil, backend("get shoot", err)
	}
	if !shoot.AssignedTo(session.ProfileID) {
		return nil, &AuthorizationError{Reason: "shoot " + shootID + " is not assigned to you"}
	}
	if shoot.Status != models.StatusCompleted {
		return nil, &TransitionError{Reason: fmt.Sprintf("uploads are only available for completed shoots (current status: %s)", shoot.Status)}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// S3 key: shoots/{shoot_id}/{kind}/{upload_id}{ext}
	key := fmt.Sprintf("shoots/%s/%s/%s%s", shoot.ID, req.Kind, uuid.New().String(), strings.ToLower(path.Ext(req.Filename)))

	request, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, &BackendError{Op: "generate pre-signed URL", Err: err}
	}

	log.Info().
		Str("shoot_id", shoot.ID).
		Str("kind", string(req.Kind)).
		Str("key", key).
		Msg("Deliverable upload URL issued")

	return &UploadResponse{
		UploadURL: request.URL,
		ObjectURL: s.objectURL(key),
		Key:       key,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

// objectURL addresses key the same way the S3 client does: path-style puts
// the bucket in the path, virtual-hosted style puts it in the host.
func (s *DeliverableService) objectURL(key string) string {
	if s.endpoint == "" {
		if s.usePathStyle {
			return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", s.region, s.bucket, key)
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}

	u, err := url.Parse(s.endpoint)
	if s.usePathStyle || err != nil || u.Host == "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	u.Host = s.bucket + "." + u.Host
	u.Path = strings.TrimRight(u.Path, "/") + "/" + key
	return u.String()
}
