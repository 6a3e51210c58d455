package roster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tesouraria/internal/roster"
)

func TestService_Sync(t *testing.T) {
	type testCase struct {
		name      string
		entries   []roster.Entry
		setupMock func(m *roster.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:    "Success",
			entries: []roster.Entry{{StudentID: "s1", ClassID: "3A", Active: true}},
			setupMock: func(m *roster.MockRepository) {
				m.EXPECT().
					Replace(gomock.Any(), gomock.Len(1)).
					DoAndReturn(func(_ context.Context, entries []roster.Entry) error {
						assert.False(t, entries[0].UpdatedAt.IsZero())
						return nil
					})
			},
		},
		{
			name:    "MissingClass",
			entries: []roster.Entry{{StudentID: "s1"}},
			wantErr: roster.ErrInvalidEntry,
		},
		{
			name: "DuplicateStudent",
			entries: []roster.Entry{
				{StudentID: "s1", ClassID: "3A"},
				{StudentID: "s1", ClassID: "3B"},
			},
			wantErr: roster.ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := roster.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := roster.NewService(repo).Sync(context.Background(), tt.entries)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}
