package bayes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phishguard/phishguard/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func trainingCorpus() []Sample {
	return []Sample{
		{Text: "win free money now claim your cash prize", Spam: true},
		{Text: "free lottery winner claim prize money today", Spam: true},
		{Text: "limited offer free cash click now", Spam: true},
		{Text: "meeting agenda for the project tomorrow", Spam: false},
		{Text: "lunch plans with the team this week", Spam: false},
		{Text: "notes from the design review meeting", Spam: false},
	}
}

func newTrainedClassifier(t *testing.T) *Classifier {
	t.Helper()
	c := NewClassifier(4096, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))
	require.NoError(t, c.Train(trainingCorpus()))
	return c
}

func TestClassifySpam(t *testing.T) {
	c := newTrainedClassifier(t)

	result, err := c.Classify(context.Background(), "claim your free prize money now")

	require.NoError(t, err)
	assert.Equal(t, "spam", result.Label)
	assert.Greater(t, result.Probability, 0.5)
	assert.Equal(t, "naive-bayes", result.ModelUsed)
}

func TestClassifyHam(t *testing.T) {
	c := newTrainedClassifier(t)

	result, err := c.Classify(context.Background(), "agenda for the project meeting tomorrow")

	require.NoError(t, err)
	assert.Equal(t, "ham", result.Label)
	assert.Less(t, result.Probability, 0.5)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTrainedClassifier(t)

	first, err := c.Classify(context.Background(), "free money offer")
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), "free money offer")
	require.NoError(t, err)

	assert.Equal(t, first.Label, second.Label)
	assert.Equal(t, first.Probability, second.Probability)
}

func TestClassifyEmptyText(t *testing.T) {
	c := newTrainedClassifier(t)

	_, err := c.Classify(context.Background(), "!!! ??? ...")

	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestClassifyUntrained(t *testing.T) {
	c := NewClassifier(4096, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))

	_, err := c.Classify(context.Background(), "anything")

	assert.Error(t, err)
}

func TestClassifyCancelledContext(t *testing.T) {
	c := newTrainedClassifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, "free money")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainRequiresBothClasses(t *testing.T) {
	c := NewClassifier(4096, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))

	err := c.Train([]Sample{
		{Text: "free money", Spam: true},
		{Text: "win big prizes", Spam: true},
	})

	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	data := "label,text\n" +
		"spam,win free money now\n" +
		"ham,see you at lunch\n" +
		"spam,\"claim your prize, today\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	samples, err := LoadCSV(path)

	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.True(t, samples[0].Spam)
	assert.Equal(t, "win free money now", samples[0].Text)
	assert.False(t, samples[1].Spam)
	assert.True(t, samples[2].Spam)
	assert.Equal(t, "claim your prize, today", samples[2].Text)
}

func TestLoadCSVReversedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	data := "message,category\n" +
		"hello there,ham\n" +
		"free money,spam\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	samples, err := LoadCSV(path)

	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.False(t, samples[0].Spam)
	assert.True(t, samples[1].Spam)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))

	assert.Error(t, err)
}

func TestLoadCSVUnknownHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	_, err := LoadCSV(path)

	assert.Error(t, err)
}
