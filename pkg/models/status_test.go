package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status string
		want   StatusKind
	}{
		{"", StatusActive},
		{"In progress", StatusActive},
		{"Done", StatusDone},
		{"  COMPLETED ", StatusDone},
		{"not done", StatusActive},
		{"Not completed yet", StatusActive},
		{"تم", StatusDone},
		{"لم يتم", StatusActive},
		{"تم الاجتماع", StatusDone},
		{"تمت", StatusDone},
		{"تمَّ", StatusDone},
		{"incomplete", StatusActive},
		{"Not finished", StatusActive},
		{"uncompleted", StatusActive},
		{"unfinished", StatusActive},
		{"اجتماع قادم", StatusActive},
		{"مستمر", StatusActive},
		{"Cancelled", StatusCancelled},
		{"postponed to next week", StatusCancelled},
		{"مؤجل", StatusCancelled},
		{"Failed", StatusFailed},
		{"client no show", StatusFailed},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyStatus(tc.status), "status %q", tc.status)
	}
}

func TestStatusKindIsTerminal(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusDone.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestIsDoneStatusChecksNegationFirst(t *testing.T) {
	assert.True(t, IsDoneStatus("done"))
	assert.False(t, IsDoneStatus("undone"))
	assert.False(t, IsDoneStatus("Not Done"))
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("تم", DoneWords))
	assert.True(t, containsWord("(تم)", DoneWords))
	assert.False(t, containsWord("اجتماع", DoneWords))
	assert.False(t, containsWord("مستمر", DoneWords))
	assert.False(t, containsWord("", DoneWords))
}
