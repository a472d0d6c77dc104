// Package archiver moves old trip requests out of Mongo into compressed
// bundles, optionally uploaded to Cloud Storage.
package archiver

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/ulikunitz/xz"
)

const DefaultRetention = 90 * 24 * time.Hour

// TripRequestArchive is satisfied by *database.TripRequestStore.
type TripRequestArchive interface {
	FindTripRequestsBefore(ctx context.Context, cutOff time.Time) ([]*ctdf.TripRequest, error)
	DeleteTripRequestsBefore(ctx context.Context, cutOff time.Time) (int, error)
}

type Uploader interface {
	Upload(ctx context.Context, filename string, reader io.Reader) error
}

type GCSUploader struct {
	BucketName string
}

func (u *GCSUploader) Upload(ctx context.Context, filename string, reader io.Reader) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create GCP storage client: %w", err)
	}
	defer client.Close()

	object := client.Bucket(u.BucketName).Object(filename)
	writer := object.NewWriter(ctx)

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	log.Info().Msgf("Written file %s to bucket %s", object.ObjectName(), object.BucketName())

	return nil
}

type Archiver struct {
	Store           TripRequestArchive
	OutputDirectory string
	Retention       time.Duration
	Uploader        Uploader
}

type Result struct {
	BundlePath string
	Archived   int
	Deleted    int
}

// WriteBundle writes one JSON file per trip request into an xz compressed tar.
func WriteBundle(w io.Writer, tripRequests []*ctdf.TripRequest, modTime time.Time) error {
	xzWriter, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	tarWriter := tar.NewWriter(xzWriter)

	for _, tripRequest := range tripRequests {
		tripRequestJSON, err := json.Marshal(tripRequest)
		if err != nil {
			return err
		}

		header := &tar.Header{
			Name:    strings.ReplaceAll(fmt.Sprintf("%s.json", tripRequest.PrimaryIdentifier), "/", "_"),
			Mode:    0644,
			Size:    int64(len(tripRequestJSON)),
			ModTime: modTime,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header: %w", err)
		}
		if _, err := tarWriter.Write(tripRequestJSON); err != nil {
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}

	return xzWriter.Close()
}

// Perform archives every trip request older than the retention period. Records
// are only deleted once the bundle has been written and uploaded.
func (a *Archiver) Perform(ctx context.Context) (*Result, error) {
	retention := a.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	currentTime := time.Now()
	cutOffTime := currentTime.Add(-retention)
	log.Info().Msgf("Archiving trip requests older than %s", cutOffTime)

	tripRequests, err := a.Store.FindTripRequestsBefore(ctx, cutOffTime)
	if err != nil {
		return nil, err
	}
	if len(tripRequests) == 0 {
		log.Info().Msg("No trip requests to archive")
		return &Result{}, nil
	}

	bundleFilename := fmt.Sprintf("trip-requests-%s.tar.xz", currentTime.UTC().Format("20060102T150405Z"))
	bundlePath := path.Join(a.OutputDirectory, bundleFilename)

	bundleFile, err := os.Create(bundlePath)
	if err != nil {
		return nil, err
	}
	if err := WriteBundle(bundleFile, tripRequests, currentTime); err != nil {
		bundleFile.Close()
		return nil, fmt.Errorf("write bundle: %w", err)
	}
	if err := bundleFile.Close(); err != nil {
		return nil, err
	}

	log.Info().Int("recordCount", len(tripRequests)).Str("bundle", bundlePath).Msg("Archive document generation complete")

	if a.Uploader != nil {
		reader, err := os.Open(bundlePath)
		if err != nil {
			return nil, err
		}
		err = a.Uploader.Upload(ctx, bundleFilename, reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("upload bundle: %w", err)
		}
	}

	deleted, err := a.Store.DeleteTripRequestsBefore(ctx, cutOffTime)
	if err != nil {
		return nil, err
	}

	return &Result{
		BundlePath: bundlePath,
		Archived:   len(tripRequests),
		Deleted:    deleted,
	}, nil
}
