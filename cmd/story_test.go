package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/danielolaszy/tickets/internal/pivotal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorySubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"comment", "start", "finish", "deliver"} {
		cmd, _, err := root.Find([]string{"story", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestParseStoryID(t *testing.T) {
	id, err := parseStoryID("1234567")
	require.NoError(t, err)
	assert.Equal(t, 1234567, id)

	id, err = parseStoryID("#42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseStoryID(bad)
		assert.ErrorContains(t, err, "invalid story id", bad)
	}
}

func TestRunComment(t *testing.T) {
	var gotID int
	var gotText string
	service := &MockStoryService{
		AddNoteFunc: func(id int, text string) error {
			gotID, gotText = id, text
			return nil
		},
	}

	var out bytes.Buffer
	require.NoError(t, runComment(context.Background(), service, &out, 42, "Fixed <b> & done"))
	assert.Equal(t, 42, gotID)
	assert.Equal(t, "Fixed <b> & done", gotText)
	assert.Equal(t, "Commented on story 42\n", out.String())
}

func TestRunCommentError(t *testing.T) {
	service := &MockStoryService{
		AddNoteFunc: func(int, string) error { return errors.New("API error") },
	}

	var out bytes.Buffer
	err := runComment(context.Background(), service, &out, 42, "text")
	assert.ErrorContains(t, err, "API error")
	assert.Empty(t, out.String())
}

func TestRunSetState(t *testing.T) {
	var gotState pivotal.State
	service := &MockStoryService{
		SetStateFunc: func(id int, state pivotal.State) error {
			gotState = state
			return nil
		},
	}

	var out bytes.Buffer
	require.NoError(t, runSetState(context.Background(), service, &out, 7, pivotal.StateDelivered))
	assert.Equal(t, pivotal.StateDelivered, gotState)
	assert.Equal(t, "Story 7 is delivered\n", out.String())
}
