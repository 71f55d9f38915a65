package prompt

import (
	"strings"
	"testing"
	"time"

	"qr-health-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeRecord(title, recordType, description string, date time.Time) *entity.HealthRecord {
	return &entity.HealthRecord{
		Id:          uuid.New(),
		Title:       title,
		RecordType:  recordType,
		Description: description,
		RecordDate:  date,
	}
}

func TestBuildRecordContextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildRecordContext(nil))
	assert.Equal(t, "", BuildRecordContext([]*entity.HealthRecord{}))
}

func TestBuildRecordContextLineFormat(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	records := []*entity.HealthRecord{
		makeRecord("Blood Panel", "lab_result", "Annual checkup panel", date),
	}

	got := BuildRecordContext(records)
	assert.Equal(t, "- Blood Panel (lab_result, 2025-03-14): Annual checkup panel", got)
}

func TestBuildRecordContextMissingDescription(t *testing.T) {
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	records := []*entity.HealthRecord{
		makeRecord("X-Ray", "imaging", "", date),
	}

	got := BuildRecordContext(records)
	assert.Equal(t, "- X-Ray (imaging, 2025-01-02): No description", got)
}

func TestBuildRecordContextOrdersMostRecentFirst(t *testing.T) {
	records := []*entity.HealthRecord{
		makeRecord("Old", "lab_result", "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		makeRecord("New", "lab_result", "", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		makeRecord("Mid", "lab_result", "", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
	}

	lines := strings.Split(BuildRecordContext(records), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "New")
	assert.Contains(t, lines[1], "Mid")
	assert.Contains(t, lines[2], "Old")
}

func TestBuildRecordContextCapsAtLimit(t *testing.T) {
	records := make([]*entity.HealthRecord, 0, MaxContextRecords+5)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxContextRecords+5; i++ {
		records = append(records, makeRecord("Record", "lab_result", "", base.AddDate(0, 0, i)))
	}

	lines := strings.Split(BuildRecordContext(records), "\n")
	assert.Len(t, lines, MaxContextRecords)
	// The dropped records are the five oldest.
	assert.Contains(t, lines[0], "2025-01-15")
	assert.Contains(t, lines[len(lines)-1], "2025-01-06")
}

func TestBuildSystemPromptBareWithoutContext(t *testing.T) {
	assert.Equal(t, HealthSystemPrompt, BuildSystemPrompt(""))
}

func TestBuildSystemPromptAppendsContextSection(t *testing.T) {
	got := BuildSystemPrompt("- X-Ray (imaging, 2025-01-02): No description")

	assert.True(t, strings.HasPrefix(got, HealthSystemPrompt))
	assert.Contains(t, got, "User's Health Record Context:\n- X-Ray")
}
