package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"

	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/util"
)

func (c *Client) ListTrainings(ctx context.Context) ([]model.Training, error) {
	var trainings []model.Training
	if err := c.getJSON(ctx, "/trainings", &trainings); err != nil {
		return nil, err
	}
	return trainings, nil
}

func (c *Client) GetTraining(ctx context.Context, trainingID string) (*model.Training, error) {
	var training model.Training
	if err := c.getJSON(ctx, "/trainings/"+url.PathEscape(trainingID), &training); err != nil {
		return nil, err
	}
	if err := training.Validate(); err != nil {
		return nil, err
	}
	return &training, nil
}

func (c *Client) DeleteTraining(ctx context.Context, trainingID string) error {
	return c.delete(ctx, "/trainings/"+url.PathEscape(trainingID))
}

// MediaFile is one uploaded asset forwarded to the upstream untouched.
type MediaFile struct {
	FieldName string
	FileName  string
	Reader    io.Reader
}

// TrainingUpload carries the multipart fields of a training create or
// update. Nil string fields are omitted so updates stay sparse.
type TrainingUpload struct {
	Title           *string
	Description     *string
	DurationMinutes *int
	Video           *MediaFile
	Image           *MediaFile
}

func (u *TrainingUpload) empty() bool {
	return u.Title == nil && u.Description == nil && u.DurationMinutes == nil &&
		u.Video == nil && u.Image == nil
}

func (u *TrainingUpload) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if u.Title != nil {
		if err := w.WriteField("title", *u.Title); err != nil {
			return nil, "", err
		}
	}
	if u.Description != nil {
		if err := w.WriteField("description", *u.Description); err != nil {
			return nil, "", err
		}
	}
	if u.DurationMinutes != nil {
		if err := w.WriteField("duration_minutes", strconv.Itoa(*u.DurationMinutes)); err != nil {
			return nil, "", err
		}
	}
	for _, f := range []*MediaFile{u.Video, u.Image} {
		if f == nil {
			continue
		}
		part, err := w.CreateFormFile(f.FieldName, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("reading %s upload: %w", f.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) CreateTraining(ctx context.Context, upload TrainingUpload) (*model.Training, error) {
	body, contentType, err := upload.encode()
	if err != nil {
		return nil, err
	}

	var training model.Training
	if err := c.postMultipart(ctx, "/trainings", body, contentType, &training); err != nil {
		return nil, err
	}
	return &training, nil
}

func (c *Client) UpdateTraining(ctx context.Context, trainingID string, upload TrainingUpload) (*model.Training, error) {
	if upload.empty() {
		return nil, util.NewValidationError("training", "no changes provided")
	}
	body, contentType, err := upload.encode()
	if err != nil {
		return nil, err
	}

	var training model.Training
	if err := c.putMultipart(ctx, "/trainings/"+url.PathEscape(trainingID), body, contentType, &training); err != nil {
		return nil, err
	}
	return &training, nil
}
