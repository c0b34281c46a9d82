package pulplib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jm-wk/pubtools-pulplib/pkg/pulplib"
)

func TestCriteriaRemote(t *testing.T) {
	tests := []struct {
		name     string
		criteria *pulplib.Criteria
		want     map[string]any
	}{
		{
			name:     "nil matches everything",
			criteria: nil,
			want:     map[string]any{},
		},
		{
			name:     "true matches everything",
			criteria: pulplib.True(),
			want:     map[string]any{},
		},
		{
			name:     "field equality",
			criteria: pulplib.WithField("name", "bash"),
			want:     map[string]any{"name": "bash"},
		},
		{
			name:     "nested field",
			criteria: pulplib.WithField("notes.created", "2024-01-01T00:00:00Z"),
			want:     map[string]any{"notes.created": "2024-01-01T00:00:00Z"},
		},
		{
			name:     "field membership",
			criteria: pulplib.WithFieldIn("arch", "x86_64", "s390x"),
			want: map[string]any{
				"arch": map[string]any{"$in": []any{"x86_64", "s390x"}},
			},
		},
		{
			name:     "field existence",
			criteria: pulplib.FieldExists("notes.signatures"),
			want: map[string]any{
				"notes.signatures": map[string]any{"$exists": true},
			},
		},
		{
			name:     "single id",
			criteria: pulplib.WithID("repo-1"),
			want:     map[string]any{"id": "repo-1"},
		},
		{
			name:     "multiple ids",
			criteria: pulplib.WithID("repo-1", "repo-2"),
			want: map[string]any{
				"id": map[string]any{"$in": []any{"repo-1", "repo-2"}},
			},
		},
		{
			name:     "content type ids",
			criteria: pulplib.WithContentTypeIDs("rpm", "srpm"),
			want: map[string]any{
				"content_type_id": map[string]any{"$in": []any{"rpm", "srpm"}},
			},
		},
		{
			name: "conjunction",
			criteria: pulplib.And(
				pulplib.WithField("name", "bash"),
				pulplib.WithContentTypeIDs("rpm"),
			),
			want: map[string]any{
				"$and": []map[string]any{
					{"name": "bash"},
					{"content_type_id": map[string]any{"$in": []any{"rpm"}}},
				},
			},
		},
		{
			name: "disjunction",
			criteria: pulplib.Or(
				pulplib.WithField("name", "bash"),
				pulplib.WithField("name", "dash"),
			),
			want: map[string]any{
				"$or": []map[string]any{
					{"name": "bash"},
					{"name": "dash"},
				},
			},
		},
		{
			name: "nested combinators",
			criteria: pulplib.And(
				pulplib.True(),
				pulplib.Or(
					pulplib.WithField("name", "bash"),
					pulplib.WithFieldIn("epoch", "0", "1"),
				),
			),
			want: map[string]any{
				"$and": []map[string]any{
					{},
					{"$or": []map[string]any{
						{"name": "bash"},
						{"epoch": map[string]any{"$in": []any{"0", "1"}}},
					}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Remote())
		})
	}
}

func TestCriteriaNilOperandPanics(t *testing.T) {
	assert.PanicsWithError(t,
		(&pulplib.ConfigurationError{Reason: "nil criteria operand"}).Error(),
		func() {
			pulplib.And(pulplib.WithField("name", "bash"), nil)
		})
}
