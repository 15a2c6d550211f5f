package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fieldlab-api/internal/dto"
	"github.com/noah-isme/fieldlab-api/internal/models"
)

func pendingSample(id string) models.SampleCollection {
	return models.SampleCollection{
		ID:             id,
		PatientID:      "p1",
		SampleType:     models.SampleTypeStool,
		Images:         models.SampleImages{{ImageID: "img-a", Filename: "a.jpg"}},
		CollectedBy:    "collector",
		CollectionDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		LabStatus:      models.LabStatusPending,
	}
}

func newTestSampleService(samples *memSampleRepo, images *fakeSampleImages, cache *CacheService) *SampleService {
	patients := newMemPatientRepo(models.Patient{ID: "p1", FirstName: "Juan", LastName: "Dela Cruz"})
	return NewSampleService(samples, patients, images, cache, NewMetricsService(), nil, SampleServiceConfig{MaxImages: 3, ListTTL: time.Minute})
}

func uploads(n int) []ImageUpload {
	out := make([]ImageUpload, n)
	for i := range out {
		out[i] = ImageUpload{Filename: "photo.png", Size: 4, Content: strings.NewReader("data")}
	}
	return out
}

func TestSampleServiceRejectWithoutCommentsLeavesRecord(t *testing.T) {
	for _, comments := range []string{"", "   ", "\t\n"} {
		repo := newMemSampleRepo(pendingSample("s1"))
		svc := newTestSampleService(repo, &fakeSampleImages{}, nil)

		_, err := svc.ReviewSample(context.Background(), "s1", models.LabStatusRejected, comments, "labtech")
		requireCode(t, err, "VALIDATION_ERROR")

		stored := repo.samples["s1"]
		assert.Equal(t, models.LabStatusPending, stored.LabStatus)
		assert.Nil(t, stored.ReviewedBy)
		assert.Nil(t, stored.ReviewedAt)
		assert.Zero(t, repo.reviews)
	}
}

func TestSampleServiceApproveWithoutComments(t *testing.T) {
	repo := newMemSampleRepo(pendingSample("s1"))
	svc := newTestSampleService(repo, &fakeSampleImages{}, nil)
	before := time.Now().UTC().Truncate(time.Millisecond)

	sample, err := svc.ReviewSample(context.Background(), "s1", models.LabStatusApproved, "", "labtech")
	require.NoError(t, err)

	assert.Equal(t, models.LabStatusApproved, sample.LabStatus)
	assert.Empty(t, sample.LabComments)
	require.NotNil(t, sample.ReviewedBy)
	assert.Equal(t, "labtech", *sample.ReviewedBy)
	require.NotNil(t, sample.ReviewedAt)
	assert.False(t, sample.ReviewedAt.Before(before))
	assert.Equal(t, "/files/img-a", sample.Images[0].URL)
}

func TestSampleServiceRejectTrimsComments(t *testing.T) {
	repo := newMemSampleRepo(pendingSample("s1"))
	svc := newTestSampleService(repo, &fakeSampleImages{}, nil)

	sample, err := svc.ReviewSample(context.Background(), "s1", models.LabStatusRejected, "  blurry image, retake  ", "labtech")
	require.NoError(t, err)
	assert.Equal(t, models.LabStatusRejected, sample.LabStatus)
	assert.Equal(t, "blurry image, retake", sample.LabComments)
}

func TestSampleServiceReviewOverwritesPriorReview(t *testing.T) {
	repo := newMemSampleRepo(pendingSample("s1"))
	svc := newTestSampleService(repo, &fakeSampleImages{}, nil)
	ctx := context.Background()

	_, err := svc.ReviewSample(ctx, "s1", models.LabStatusRejected, "smudged", "tech-a")
	require.NoError(t, err)
	sample, err := svc.ReviewSample(ctx, "s1", models.LabStatusApproved, "", "tech-b")
	require.NoError(t, err)

	assert.Equal(t, models.LabStatusApproved, sample.LabStatus)
	assert.Empty(t, sample.LabComments)
	assert.Equal(t, "tech-b", *sample.ReviewedBy)
}

func TestSampleServiceReviewErrors(t *testing.T) {
	repo := newMemSampleRepo(pendingSample("s1"))
	svc := newTestSampleService(repo, &fakeSampleImages{}, nil)
	ctx := context.Background()

	_, err := svc.ReviewSample(ctx, "missing", models.LabStatusApproved, "", "labtech")
	requireCode(t, err, "NOT_FOUND")

	for _, outcome := range []models.LabStatus{models.LabStatusPending, "maybe", ""} {
		_, err = svc.ReviewSample(ctx, "s1", outcome, "note", "labtech")
		requireCode(t, err, "VALIDATION_ERROR")
	}
	assert.Equal(t, models.LabStatusPending, repo.samples["s1"].LabStatus)
}

func TestSampleServiceCreateSample(t *testing.T) {
	repo := newMemSampleRepo()
	images := &fakeSampleImages{}
	svc := newTestSampleService(repo, images, nil)
	before := time.Now().UTC().Add(-time.Second)

	sample, err := svc.CreateSample(context.Background(), dto.CreateSampleRequest{PatientID: "p1", Notes: " fasting "}, uploads(2), &models.JWTClaims{Username: "collector"})
	require.NoError(t, err)

	assert.Equal(t, models.LabStatusPending, sample.LabStatus)
	assert.Equal(t, models.SampleTypeStool, sample.SampleType)
	assert.Equal(t, "collector", sample.CollectedBy)
	require.NotNil(t, sample.PatientName)
	assert.Equal(t, "Juan Dela Cruz", *sample.PatientName)
	require.NotNil(t, sample.Notes)
	assert.Equal(t, "fasting", *sample.Notes)
	assert.True(t, sample.CollectionDate.After(before))
	assert.Nil(t, sample.ReviewedBy)
	require.Len(t, sample.Images, 2)
	assert.Equal(t, "/files/img-1", sample.Images[0].URL)

	stored := repo.samples[sample.ID]
	assert.Empty(t, stored.Images[0].URL)
}

func TestSampleServiceCreateSampleValidation(t *testing.T) {
	actor := &models.JWTClaims{Username: "collector"}
	cases := []struct {
		name  string
		req   dto.CreateSampleRequest
		files int
		code  string
	}{
		{"missing patient", dto.CreateSampleRequest{}, 1, "VALIDATION_ERROR"},
		{"no images", dto.CreateSampleRequest{PatientID: "p1"}, 0, "VALIDATION_ERROR"},
		{"too many images", dto.CreateSampleRequest{PatientID: "p1"}, 4, "VALIDATION_ERROR"},
		{"bad type", dto.CreateSampleRequest{PatientID: "p1", SampleType: "saliva"}, 1, "VALIDATION_ERROR"},
		{"unknown patient", dto.CreateSampleRequest{PatientID: "p9"}, 1, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemSampleRepo()
			images := &fakeSampleImages{}
			svc := newTestSampleService(repo, images, nil)

			_, err := svc.CreateSample(context.Background(), tc.req, uploads(tc.files), actor)
			requireCode(t, err, tc.code)
			assert.Empty(t, repo.samples)
			assert.Empty(t, images.stored)
		})
	}
}

func TestSampleServiceCreateSampleRollsBackImages(t *testing.T) {
	actor := &models.JWTClaims{Username: "collector"}

	t.Run("image rejected", func(t *testing.T) {
		images := &fakeSampleImages{failAt: 3}
		repo := newMemSampleRepo()
		svc := newTestSampleService(repo, images, nil)

		_, err := svc.CreateSample(context.Background(), dto.CreateSampleRequest{PatientID: "p1"}, uploads(3), actor)
		requireCode(t, err, "VALIDATION_ERROR")
		assert.Equal(t, []string{"img-1", "img-2"}, images.discarded)
		assert.Empty(t, repo.samples)
	})

	t.Run("record write fails", func(t *testing.T) {
		images := &fakeSampleImages{}
		repo := newMemSampleRepo()
		repo.createErr = errors.New("write failed")
		svc := newTestSampleService(repo, images, nil)

		_, err := svc.CreateSample(context.Background(), dto.CreateSampleRequest{PatientID: "p1"}, uploads(2), actor)
		requireCode(t, err, "INTERNAL_ERROR")
		assert.Equal(t, []string{"img-1", "img-2"}, images.discarded)
	})
}

func TestSampleServiceListUsesCache(t *testing.T) {
	backend := newMemCache()
	repo := newMemSampleRepo(pendingSample("s1"))
	svc := newTestSampleService(repo, &fakeSampleImages{}, newTestCache(backend))
	ctx := context.Background()

	items, pagination, err := svc.ListSamples(ctx, dto.SampleListQuery{LabStatus: "pending"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/files/img-a", items[0].Images[0].URL)
	assert.Equal(t, 1, pagination.TotalCount)

	_, _, err = svc.ListSamples(ctx, dto.SampleListQuery{LabStatus: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.ReviewSample(ctx, "s1", models.LabStatusApproved, "", "labtech")
	require.NoError(t, err)

	items, _, err = svc.ListSamples(ctx, dto.SampleListQuery{LabStatus: "pending"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 2, repo.listCalls)
}

func TestSampleServiceListPagination(t *testing.T) {
	first := pendingSample("s1")
	second := pendingSample("s2")
	second.CollectionDate = first.CollectionDate.Add(time.Hour)
	svc := newTestSampleService(newMemSampleRepo(first, second), &fakeSampleImages{}, nil)

	items, pagination, err := svc.ListSamples(context.Background(), dto.SampleListQuery{Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].ID)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 2, pagination.TotalCount)

	_, _, err = svc.ListSamples(context.Background(), dto.SampleListQuery{LabStatus: "archived"})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestSampleServiceGetSample(t *testing.T) {
	svc := newTestSampleService(newMemSampleRepo(pendingSample("s1")), &fakeSampleImages{}, nil)

	sample, err := svc.GetSample(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sample.ID)

	_, err = svc.GetSample(context.Background(), "s2")
	requireCode(t, err, "NOT_FOUND")
}
