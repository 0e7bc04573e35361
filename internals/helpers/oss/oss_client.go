// internals/helpers/oss/oss_client.go
package helper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/rs/zerolog/log"
)

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string
	Prefix     string // optional: "arc"
}

// ErrOSSNotConfigured lets main fall back to the memory store outside production.
var ErrOSSNotConfigured = fmt.Errorf("missing env: OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET_NAME")

func NewOSSServiceFromEnv() (*OSSService, error) {
	endpoint := getEnv("OSS_ENDPOINT")
	ak := getEnv("OSS_ACCESS_KEY_ID")
	sk := getEnv("OSS_ACCESS_KEY_SECRET")
	bucketName := getEnv("OSS_BUCKET_NAME")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, ErrOSSNotConfigured
	}

	var opts []oss.ClientOption
	if sts := getEnv("OSS_SECURITY_TOKEN"); sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// light bucket check; AccessDenied is tolerated for write-only keys
	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Warn().Str("bucket", bucketName).Msg("[OSS] skip location check due to AccessDenied")
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Info().Str("bucket", bucketName).Str("location", loc).Msg("[OSS] bucket ready")
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: getEnv("OSS_PUBLIC_BASE"),
		Prefix:     strings.Trim(getEnv("OSS_PREFIX"), "/"),
	}, nil
}

func (s *OSSService) Upload(ctx context.Context, folder string, u Upload) (BlobRef, error) {
	dir := strings.Trim(folder, "/")
	if s.Prefix != "" {
		dir = s.Prefix + "/" + dir
	}
	key := GenerateUniqueFilename(dir, u.Filename)

	ct := u.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(ct),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(u.Data), opts...); err != nil {
		if ctx.Err() != nil {
			return BlobRef{}, apperror.Upstream("blob upload timed out", ctx.Err())
		}
		return BlobRef{}, apperror.Upstream("blob upload failed", err)
	}
	return BlobRef{URL: s.PublicURL(key), Key: key}, nil
}

func (s *OSSService) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := s.Bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil && !isNotFound(err) {
		return apperror.Upstream("blob delete failed", err)
	}
	return nil
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return strings.TrimRight(s.PublicBase, "/") + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func isNotFound(err error) bool {
	if e, ok := err.(oss.ServiceError); ok {
		return e.StatusCode == 404
	}
	return false
}
