package wafblock

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/wafv2"
	waftypes "github.com/aws/aws-sdk-go-v2/service/wafv2/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appconfig "github.com/whrrk/eduplatform/pkg/config"
)

type fakeWAF struct {
	addresses []string
	lockToken string

	gotGet    *wafv2.GetIPSetInput
	gotUpdate *wafv2.UpdateIPSetInput
}

func (f *fakeWAF) GetIPSet(ctx context.Context, params *wafv2.GetIPSetInput, optFns ...func(*wafv2.Options)) (*wafv2.GetIPSetOutput, error) {
	f.gotGet = params
	return &wafv2.GetIPSetOutput{
		IPSet:     &waftypes.IPSet{Addresses: f.addresses},
		LockToken: &f.lockToken,
	}, nil
}

func (f *fakeWAF) UpdateIPSet(ctx context.Context, params *wafv2.UpdateIPSetInput, optFns ...func(*wafv2.Options)) (*wafv2.UpdateIPSetOutput, error) {
	f.gotUpdate = params
	return &wafv2.UpdateIPSetOutput{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{IPSetID: "abc-123", IPSetName: "blocked-ips", IPSetScope: "REGIONAL"}
}

// logsEvent builds a real subscription payload: gzip-compressed,
// base64-encoded CloudwatchLogsData, the shape AWSLogs.Parse expects.
func logsEvent(t *testing.T, messages ...string) events.CloudwatchLogsEvent {
	t.Helper()

	data := events.CloudwatchLogsData{
		LogGroup:    "aws-waf-logs-eduplatform",
		MessageType: "DATA_MESSAGE",
	}
	for i, m := range messages {
		data.LogEvents = append(data.LogEvents, events.CloudwatchLogsLogEvent{
			ID:        "evt",
			Message:   m,
			Timestamp: int64(i),
		})
	}

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return events.CloudwatchLogsEvent{
		AWSLogs: events.CloudwatchLogsRawData{
			Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
		},
	}
}

func wafLine(clientIP string) string {
	return `{"httpRequest":{"clientIp":"` + clientIP + `","country":"US"}}`
}

func TestNew_RequiresIPSetConfig(t *testing.T) {
	_, err := New(&fakeWAF{}, &appconfig.Config{}, testLogger())
	assert.Error(t, err)

	_, err = New(&fakeWAF{}, testConfig(), testLogger())
	assert.NoError(t, err)
}

func TestExtractClientIPs(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     []string
	}{
		{
			name:     "distinct IPs sorted as /32 CIDRs",
			messages: []string{wafLine("10.0.0.2"), wafLine("10.0.0.1")},
			want:     []string{"10.0.0.1/32", "10.0.0.2/32"},
		},
		{
			name:     "duplicates collapse",
			messages: []string{wafLine("10.0.0.1"), wafLine("10.0.0.1")},
			want:     []string{"10.0.0.1/32"},
		},
		{
			name:     "non-JSON and empty clientIp skipped",
			messages: []string{"not json", `{"httpRequest":{}}`, wafLine("10.0.0.9")},
			want:     []string{"10.0.0.9/32"},
		},
		{
			name:     "nothing extractable",
			messages: []string{"garbage"},
			want:     []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := events.CloudwatchLogsData{}
			for _, m := range tt.messages {
				data.LogEvents = append(data.LogEvents, events.CloudwatchLogsLogEvent{Message: m})
			}
			assert.Equal(t, tt.want, ExtractClientIPs(data))
		})
	}
}

func TestHandle_MergesNewAddresses(t *testing.T) {
	waf := &fakeWAF{
		addresses: []string{"192.0.2.1/32"},
		lockToken: "tok-1",
	}
	b, err := New(waf, testConfig(), testLogger())
	require.NoError(t, err)

	res, err := b.Handle(context.Background(), logsEvent(t,
		wafLine("10.0.0.1"), wafLine("192.0.2.1"), wafLine("10.0.0.1")))
	require.NoError(t, err)
	assert.Equal(t, Result{Extracted: 2, Added: 1}, res)

	require.NotNil(t, waf.gotUpdate)
	assert.Equal(t, "abc-123", *waf.gotUpdate.Id)
	assert.Equal(t, "blocked-ips", *waf.gotUpdate.Name)
	assert.Equal(t, waftypes.ScopeRegional, waf.gotUpdate.Scope)
	assert.Equal(t, "tok-1", *waf.gotUpdate.LockToken)
	assert.ElementsMatch(t, []string{"192.0.2.1/32", "10.0.0.1/32"}, waf.gotUpdate.Addresses)
}

func TestHandle_NoNewAddressesSkipsUpdate(t *testing.T) {
	waf := &fakeWAF{addresses: []string{"10.0.0.1/32"}, lockToken: "tok-1"}
	b, err := New(waf, testConfig(), testLogger())
	require.NoError(t, err)

	res, err := b.Handle(context.Background(), logsEvent(t, wafLine("10.0.0.1")))
	require.NoError(t, err)
	assert.Equal(t, Result{Extracted: 1, Added: 0}, res)
	assert.Nil(t, waf.gotUpdate)
}

func TestHandle_NothingExtractedLeavesIPSetAlone(t *testing.T) {
	waf := &fakeWAF{}
	b, err := New(waf, testConfig(), testLogger())
	require.NoError(t, err)

	res, err := b.Handle(context.Background(), logsEvent(t, "not waf json"))
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Nil(t, waf.gotGet)
	assert.Nil(t, waf.gotUpdate)
}

func TestHandle_BadPayload(t *testing.T) {
	b, err := New(&fakeWAF{}, testConfig(), testLogger())
	require.NoError(t, err)

	_, err = b.Handle(context.Background(), events.CloudwatchLogsEvent{
		AWSLogs: events.CloudwatchLogsRawData{Data: "%%% not base64 %%%"},
	})
	assert.Error(t, err)
}
