package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmployee_MeanProgress(t *testing.T) {
	tests := []struct {
		name     string
		progress []int
		want     float64
	}{
		{name: "no entries", want: 0},
		{name: "single course", progress: []int{40}, want: 40},
		{name: "uneven mean", progress: []int{75, 0}, want: 37.5},
		{name: "all complete", progress: []int{100, 100, 100}, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp := Employee{ID: "e1"}
			for i, p := range tt.progress {
				emp.Progress = append(emp.Progress, CourseProgress{
					CourseID: "c" + string(rune('0'+i)),
					Progress: p,
				})
			}
			assert.Equal(t, tt.want, emp.MeanProgress())
		})
	}
}

func TestEmployee_OverallProgress_rounds(t *testing.T) {
	emp := Employee{
		Progress: []CourseProgress{{CourseID: "c1", Progress: 75}, {CourseID: "c2", Progress: 0}},
	}
	assert.Equal(t, 38, emp.OverallProgress())
}

func TestEmployee_CompletedCourseCount(t *testing.T) {
	emp := Employee{
		Progress: []CourseProgress{
			{CourseID: "c1", Progress: 100},
			{CourseID: "c2", Progress: 99},
			{CourseID: "c3", Progress: 100},
		},
	}
	assert.Equal(t, 2, emp.CompletedCourseCount())
}

func TestCourseProgress_recompute(t *testing.T) {
	cp := CourseProgress{
		CourseID: "c1",
		Progress: 50,
		Modules: []ModuleProgress{
			{ModuleID: "m1", Status: StatusCompleted},
			{ModuleID: "m2", Status: StatusInProgress},
		},
	}

	cp.recompute(4)
	assert.Equal(t, 25, cp.Progress)

	// module count shrank below the completed count: capped math still holds
	cp.recompute(1)
	assert.Equal(t, 100, cp.Progress)

	cp.recompute(0)
	assert.Equal(t, 0, cp.Progress)
}

func TestAccessTokens(t *testing.T) {
	link := MakeAccessLink("e42")
	assert.Equal(t, "/access/e42", link)

	tests := []struct {
		token string
		want  string
	}{
		{token: "e42", want: "e42"},
		{token: "/access/e42", want: "e42"},
		{token: "https://lms.example.com/access/e42", want: "e42"},
		{token: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAccessToken(tt.token))
	}
}

func TestEmployee_CourseProgressFor_returnsPointerIntoLedger(t *testing.T) {
	emp := Employee{
		Progress: []CourseProgress{{CourseID: "c1", Progress: 10}},
	}
	cp := emp.CourseProgressFor("c1")
	if assert.NotNil(t, cp) {
		cp.LastAccessed = time.Now()
		assert.Equal(t, cp.LastAccessed, emp.Progress[0].LastAccessed)
	}
	assert.Nil(t, emp.CourseProgressFor("nope"))
}
