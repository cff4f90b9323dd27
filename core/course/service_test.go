package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulamba/mafunzo/core/course"
	inmemdb "github.com/tulamba/mafunzo/storage/database/inmem"
	"github.com/tulamba/mafunzo/storage/snapshot"
	testutil "github.com/tulamba/mafunzo/tests"
)

type syncerRecorder struct {
	synced []course.Course
}

func (r *syncerRecorder) SyncCourseProgress(_ context.Context, crs course.Course) error {
	r.synced = append(r.synced, crs)
	return nil
}

func setup(t *testing.T, courses ...course.Course) (*course.Service, *syncerRecorder, snapshot.Store) {
	t.Helper()
	db, snaps := testutil.PrepareDB(t, courses, nil)

	svc := course.NewService(inmemdb.NewCourseRepository(db))
	syncer := &syncerRecorder{}
	svc.SetProgressSyncer(syncer)
	return svc, syncer, snaps
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, snaps := setup(t)

	nc := course.NewCourse{
		Title:    "Fire Safety",
		Category: "Compliance",
		Level:    course.LevelBeginner,
		Modules: []course.NewModule{
			{Title: "Extinguishers", Content: []course.NewModuleContent{
				{Title: "Intro video", Type: course.ContentVideo},
			}},
			{ID: "keep-me", Title: "Evacuation"},
		},
	}
	require.NoError(t, nc.Validate())

	crs, err := svc.Create(ctx, nc)
	require.NoError(t, err)
	assert.NotEmpty(t, crs.ID)
	require.Len(t, crs.Modules, 2)
	assert.NotEmpty(t, crs.Modules[0].ID, "missing module ids are assigned")
	assert.Equal(t, "keep-me", crs.Modules[1].ID, "provided module ids are kept")
	assert.NotEmpty(t, crs.Modules[0].Content[0].ID)

	// round-trip through the store
	got, err := svc.GetByID(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs, got)

	var persisted []course.Course
	require.NoError(t, snaps.Load(ctx, snapshot.Courses, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, crs.ID, persisted[0].ID)
}

func TestService_GetByID_notFound(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.GetByID(context.Background(), "nope")
	assert.Equal(t, course.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	c1 := testutil.MakeCourse("c1", "Fire Safety", 2)
	c2 := testutil.MakeCourse("c2", "Data Privacy", 3)
	c2.Category = "Compliance"
	c2.Level = course.LevelAdvanced
	svc, _, _ := setup(t, c1, c2)

	all, err := svc.Query(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := svc.Query(ctx, &course.QueryFilter{Search: "fire"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	got, err = svc.Query(ctx, &course.QueryFilter{Level: "advanced"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)

	got, err = svc.Query(ctx, &course.QueryFilter{Search: "fire", Category: "Compliance"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, syncer, _ := setup(t, testutil.MakeCourse("c1", "Fire Safety", 4))

	uc := course.UpdateCourse{
		Title:   "Fire Safety 2021",
		Level:   course.LevelIntermediate,
		Modules: []course.NewModule{{ID: "m1", Title: "Extinguishers"}},
	}
	require.NoError(t, uc.Validate())

	crs, err := svc.Update(ctx, "c1", uc)
	require.NoError(t, err)
	assert.Equal(t, "c1", crs.ID, "id survives a full replace")
	assert.Equal(t, "Fire Safety 2021", crs.Title)
	assert.Len(t, crs.Modules, 1)

	// the syncer saw the new definition
	require.Len(t, syncer.synced, 1)
	assert.Equal(t, "c1", syncer.synced[0].ID)
	assert.Len(t, syncer.synced[0].Modules, 1)

	_, err = svc.Update(ctx, "ghost", uc)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, testutil.MakeCourse("c1", "Fire Safety", 4))

	require.NoError(t, svc.Delete(ctx, "c1"))

	_, err := svc.GetByID(ctx, "c1")
	assert.Equal(t, course.ErrNotFound, err)
	assert.Equal(t, course.ErrNotFound, svc.Delete(ctx, "c1"))

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewCourse_Validate(t *testing.T) {
	tests := []struct {
		name    string
		nc      course.NewCourse
		wantErr bool
	}{
		{name: "valid", nc: course.NewCourse{Title: "T", Level: course.LevelBeginner}},
		{name: "missing title", nc: course.NewCourse{Level: course.LevelBeginner}, wantErr: true},
		{name: "bad level", nc: course.NewCourse{Title: "T", Level: "Expert"}, wantErr: true},
		{name: "bad resource type", nc: course.NewCourse{Title: "T", Level: course.LevelBeginner, ResourceType: "doc"}, wantErr: true},
		{name: "bad image url", nc: course.NewCourse{Title: "T", Level: course.LevelBeginner, ImageURL: "not-a-url"}, wantErr: true},
		{
			name: "bad nested content type",
			nc: course.NewCourse{Title: "T", Level: course.LevelBeginner, Modules: []course.NewModule{
				{Title: "M", Content: []course.NewModuleContent{{Title: "C", Type: "podcast"}}},
			}},
			wantErr: true,
		},
		{
			name: "valid nested",
			nc: course.NewCourse{Title: "T", Level: course.LevelAdvanced, Modules: []course.NewModule{
				{Title: "M", ResourceType: course.ResourceVideo, ResourceURL: "https://example.com/v.mp4"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
