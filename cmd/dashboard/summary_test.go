package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
)

type recordSource [][]string

func (s recordSource) Name() string { return "memory" }

func (s recordSource) Fetch(ctx context.Context) ([][]string, error) { return s, nil }

func TestPrintSummary(t *testing.T) {
	rows := []string{
		"1,1.0,male,16,pacific,45,60000,60,50,55,70,very satisfied,agree,agree,disagree,disagree,agree",
		"2,1.0,female,12,new england,89 or older,30000,35,30,40,40,mod. satisfied,disagree,disagree,disagree,agree,agree",
		"3,1.0,male,12,pacific,33,40000,40,35,45,45,mod. satisfied,agree,disagree,agree,IAP,disagree",
		"4,1.0,female,16,south atlantic,51,45001,55,IAP,60,60,very satisfied,agree,strongly disagree,disagree,disagree,agree",
	}
	records := recordSource{model.SourceColumns()}
	for _, row := range rows {
		records = append(records, strings.Split(row, ","))
	}

	state, err := pipeline.Run(context.Background(), records, pipeline.Options{}, zap.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	printSummary(&buf, state)
	out := buf.String()

	assert.Contains(t, out, "4 respondents")
	assert.Contains(t, out, "GENDER")
	assert.Contains(t, out, "50,000")
	assert.Contains(t, out, "37,500.5")
	assert.Contains(t, out, "strongly disagree")
}

func TestFormatMean(t *testing.T) {
	v := 1234.5
	assert.Equal(t, "1,234.5", formatMean(&v))
	assert.Equal(t, "n/a", formatMean(nil))
}
