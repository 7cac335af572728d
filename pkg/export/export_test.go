package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/borgmon/meetwatch/pkg/feed"
	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = []models.Meeting{
	{ID: "m-1", Date: "2025/01/05", Time: "09:30", Project: "Acme, Inc", Team: "Sales", Via: "Meet", MeetURL: "https://meet.google.com/abc-defg-hij"},
	{ID: "m-2", Date: "2025/01/05", Time: "14:00", Project: "Globex", Team: "Support", Status: "Cancelled", ClientStatus: "Rebooking"},
	{ID: "m-3", Date: "2025/01/06", Time: "", Project: "No time yet"},
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, ".ICS": FormatICS, " xlsx ": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, FormatCSV, nil), ErrNoMeetings)
	assert.Zero(t, buf.Len())
}

func TestWriteCSVParsesBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample))

	rows := feed.ParseCSV(buf.String())
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Acme, Inc", rows[1][3])
	assert.Equal(t, "Cancelled", rows[2][6])
	assert.Equal(t, "Rebooking", rows[2][9])
	assert.Len(t, rows[1], len(Header))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sample))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "m-2", rows[2][0])
	assert.Equal(t, "Globex", rows[2][3])
	assert.Equal(t, "Rebooking", rows[2][9])
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatICS, sample))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2, "meeting without a time is skipped")

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Acme, Inc (Sales)", summary)

	start, err := events[0].DateTimeStart(time.Local)
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 1, 5, 9, 30, 0, 0, time.Local)))

	status, err := events[1].Props.Text(ical.PropStatus)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", status)
}

func TestWriteICSWithoutSchedulableMeetings(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, FormatICS, []models.Meeting{{ID: "x", Date: "soon", Time: "later"}})
	assert.ErrorIs(t, err, ErrNoMeetings)
}
