package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/util/compression"
)

const s3ObjectSuffix = ".json.gz"

type S3Config struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// ParseS3Endpoint reads s3://bucket/prefix?endpoint=https://...&region=auto
// and a key of the form ACCESS_KEY_ID:SECRET.
func ParseS3Endpoint(rawURL, key string) (S3Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return S3Config{}, fmt.Errorf("invalid s3 endpoint: %w", err)
	}
	if u.Host == "" {
		return S3Config{}, fmt.Errorf("s3 endpoint needs a bucket name")
	}

	id, secret, ok := strings.Cut(key, ":")
	if !ok || id == "" || secret == "" {
		return S3Config{}, fmt.Errorf("s3 key must be ACCESS_KEY_ID:SECRET")
	}

	cfg := S3Config{
		Bucket:          u.Host,
		Prefix:          strings.TrimPrefix(u.Path, "/"),
		Endpoint:        u.Query().Get("endpoint"),
		Region:          u.Query().Get("region"),
		AccessKeyID:     id,
		SecretAccessKey: secret,
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	if cfg.Prefix != "" && !strings.HasSuffix(cfg.Prefix, "/") {
		cfg.Prefix += "/"
	}
	if ps := u.Query().Get("path_style"); ps != "" {
		if cfg.UsePathStyle, err = strconv.ParseBool(ps); err != nil {
			return S3Config{}, fmt.Errorf("invalid path_style: %w", err)
		}
	}
	return cfg, nil
}

// S3Store keeps one gzip-compressed JSON object per note in a bucket.
// Listing reads every object, so it suits small personal collections.
type S3Store struct {
	client     *s3.Client
	bucket     string
	prefix     string
	compressor compression.Compressor
	now        func() time.Time
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error initializing S3 client")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		// Not every S3-compatible service understands the newer checksum headers.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Store{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		compressor: compression.GzipCompressor{},
		now:        time.Now,
	}, nil
}

func (s *S3Store) key(id model.NoteID) string {
	return s.prefix + string(id) + s3ObjectSuffix
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var withStatus interface{ HTTPStatusCode() int }
	return errors.As(err, &withStatus) && withStatus.HTTPStatusCode() == 404
}

func (s *S3Store) List(ctx context.Context, search string) ([]model.Note, error) {
	notes := make([]model.Note, 0)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "error listing note objects")
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, s3ObjectSuffix) {
				continue
			}

			note, err := s.read(ctx, key)
			if isNotFound(err) {
				// Deleted between the listing and the read.
				continue
			}
			if err != nil {
				return nil, err
			}
			notes = append(notes, note)
		}
	}

	return filterAndSort(notes, search), nil
}

func (s *S3Store) read(ctx context.Context, key string) (model.Note, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return model.Note{}, errors.Wrapf(err, "error reading note object %s", key)
	}
	defer out.Body.Close()

	compressed, err := io.ReadAll(out.Body)
	if err != nil {
		return model.Note{}, errors.Wrapf(err, "error reading note object %s", key)
	}
	return decodeNoteObject(s.compressor, compressed)
}

func (s *S3Store) write(ctx context.Context, note model.Note) error {
	body, err := encodeNoteObject(s.compressor, note)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(note.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{"title": url.QueryEscape(note.Title)},
	})
	if err != nil {
		return errors.Wrapf(err, "error writing note object %s", note.ID)
	}
	return nil
}

func encodeNoteObject(c compression.Compressor, note model.Note) ([]byte, error) {
	data, err := json.Marshal(note)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding note")
	}
	compressed, err := c.Compress(data)
	if err != nil {
		return nil, errors.Wrap(err, "error compressing note")
	}
	return compressed, nil
}

func decodeNoteObject(c compression.Compressor, compressed []byte) (model.Note, error) {
	data, err := c.Decompress(compressed)
	if err != nil {
		return model.Note{}, errors.Wrap(err, "error decompressing note")
	}
	var note model.Note
	if err := json.Unmarshal(data, &note); err != nil {
		return model.Note{}, errors.Wrap(err, "error decoding note")
	}
	return note, nil
}

func (s *S3Store) Insert(ctx context.Context, in model.NoteInput) (model.Note, error) {
	now := s.now().UTC()
	note := model.Note{
		ID:        model.NoteID(uuid.New().String()),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.write(ctx, note); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

func (s *S3Store) Update(ctx context.Context, id model.NoteID, in model.NoteInput, updatedAt time.Time) (model.Note, error) {
	note, err := s.read(ctx, s.key(id))
	if isNotFound(err) {
		return model.Note{}, errors.WithStack(ErrNotFound)
	}
	if err != nil {
		return model.Note{}, err
	}

	note.Title = in.Title
	note.Content = in.Content
	note.UpdatedAt = updatedAt.UTC()
	if err := s.write(ctx, note); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

func (s *S3Store) Delete(ctx context.Context, id model.NoteID) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return errors.Wrapf(err, "error deleting note object %s", id)
	}
	return nil
}
