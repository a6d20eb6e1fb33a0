package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/failures"
	"github.com/dbsmedya/clmigrate/internal/logger"
	"github.com/dbsmedya/clmigrate/internal/source"
	"github.com/dbsmedya/clmigrate/internal/types"
)

type fakeCreator struct {
	calls   []careerleaf.Employer
	results map[int64]careerleaf.CreateResult
	errs    map[int64]error
}

func (f *fakeCreator) Create(_ context.Context, r careerleaf.Resource, record interface{}) (careerleaf.CreateResult, error) {
	emp := record.(careerleaf.Employer)
	f.calls = append(f.calls, emp)
	if err, ok := f.errs[emp.OldID]; ok {
		if errors.Is(err, careerleaf.ErrEncodeRecord) {
			return careerleaf.CreateResult{}, err
		}
		return careerleaf.CreateResult{Payload: sentPayload(emp)}, err
	}
	if res, ok := f.results[emp.OldID]; ok {
		res.Payload = sentPayload(emp)
		return res, nil
	}
	return careerleaf.CreateResult{OK: true, StatusCode: 201, Payload: sentPayload(emp)}, nil
}

// sentPayload stands for the request body the client would have sent.
func sentPayload(emp careerleaf.Employer) []byte {
	return []byte(fmt.Sprintf(`{"name":%q,"old_id":%d}`, emp.Name, emp.OldID))
}

type sliceSource []source.Item

func (s sliceSource) Items() []source.Item { return s }

func item(id, name string) source.Item {
	return source.Item{
		Node: source.NewNode("employer", map[string]string{"id": id, "name": name}),
		Contacts: []source.Contact{
			{FullName: "Jane Doe", Email: "jane@" + name},
		},
	}
}

type recorded struct {
	got []failures.Failure
}

func (r *recorded) Record(_ context.Context, f failures.Failure) error {
	r.got = append(r.got, f)
	return nil
}

func TestRunSkipsExisting(t *testing.T) {
	client := &fakeCreator{}
	im := New(client, nil, nil, Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("42", "Acme")}, careerleaf.NewIDSet(42))
	require.NoError(t, err)

	assert.Equal(t, types.RunStats{Total: 1, Success: 0, Failed: 0, Skipped: 1}, stats)
	assert.Empty(t, client.calls)
}

func TestRunSubmitsOncePerRecord(t *testing.T) {
	client := &fakeCreator{}
	im := New(client, nil, nil, Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme"), item("2", "Globex")}, careerleaf.NewIDSet())
	require.NoError(t, err)

	assert.Equal(t, types.RunStats{Total: 2, Success: 2}, stats)
	require.Len(t, client.calls, 2)
	assert.Equal(t, int64(1), client.calls[0].OldID)
	assert.Equal(t, "Jane", client.calls[0].Users[0].FirstName)
}

func TestRunRejectedRecordIsRecordedAndRunContinues(t *testing.T) {
	client := &fakeCreator{results: map[int64]careerleaf.CreateResult{
		1: {OK: false, StatusCode: 500, Body: []byte(`{"name":"Acme"}`)},
	}}
	rec := &recorded{}
	im := New(client, rec, nil, Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme"), item("2", "Globex")}, careerleaf.NewIDSet())
	require.NoError(t, err)

	assert.Equal(t, types.RunStats{Total: 2, Success: 1, Failed: 1}, stats)
	assert.Len(t, client.calls, 2, "next record is still processed")

	require.Len(t, rec.got, 1)
	f := rec.got[0]
	assert.Equal(t, failures.KindRejected, f.Kind)
	assert.Equal(t, "employers", f.Resource)
	assert.Equal(t, 500, f.StatusCode)
	assert.Equal(t, `{"name":"Acme"}`, string(f.Response))
	assert.Contains(t, string(f.Payload), `"name":"Acme"`)
	assert.Contains(t, string(f.Payload), `"old_id":1`)
}

func TestRunRejectedRecordReachesFailureLog(t *testing.T) {
	opCore, _ := observer.New(zapcore.DebugLevel)
	failCore, failLogs := observer.New(zapcore.DebugLevel)
	log := logger.NewWithCores(opCore, failCore)

	client := &fakeCreator{results: map[int64]careerleaf.CreateResult{
		1: {OK: false, StatusCode: 500, Body: []byte(`{"name":"Acme"}`)},
	}}
	im := New(client, failures.NewLogRecorder(log.Failures()), log, Options{})

	_, err := im.Run(context.Background(), sliceSource{item("1", "Acme")}, careerleaf.NewIDSet())
	require.NoError(t, err)

	require.Equal(t, 1, failLogs.Len())
	ctx := failLogs.All()[0].ContextMap()
	assert.Contains(t, ctx["payload"], `"name":"Acme"`)
	assert.Equal(t, `{"name":"Acme"}`, ctx["response"])
}

func TestRunTransportErrorIsRecoverable(t *testing.T) {
	client := &fakeCreator{errs: map[int64]error{1: errors.New("connection reset")}}
	rec := &recorded{}
	im := New(client, rec, nil, Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme"), item("2", "Globex")}, careerleaf.NewIDSet())
	require.NoError(t, err)
	assert.Equal(t, types.RunStats{Total: 2, Success: 1, Failed: 1}, stats)
	require.Len(t, rec.got, 1)
	assert.Equal(t, failures.KindTransport, rec.got[0].Kind)
	assert.Equal(t, `{"name":"Acme","old_id":1}`, string(rec.got[0].Payload), "the payload that was sent is recorded")
}

func TestRunEncodeErrorIsADataFailure(t *testing.T) {
	client := &fakeCreator{errs: map[int64]error{
		1: fmt.Errorf("%w: unsupported value", careerleaf.ErrEncodeRecord),
	}}
	rec := &recorded{}
	im := New(client, rec, nil, Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme")}, careerleaf.NewIDSet())
	require.NoError(t, err)
	assert.Equal(t, types.RunStats{Total: 1, Failed: 1}, stats)
	require.Len(t, rec.got, 1)
	assert.Equal(t, failures.KindData, rec.got[0].Kind)
	assert.Empty(t, rec.got[0].Payload)
}

func TestRunDerivationFailure(t *testing.T) {
	client := &fakeCreator{}
	rec := &recorded{}
	im := New(client, rec, nil, Options{})

	noName := source.Item{
		Node:     source.NewNode("employer", map[string]string{"id": "3", "full_name": "Jane Doe"}),
		Contacts: []source.Contact{{FullName: "Jane Doe", Email: "j@x"}},
	}
	stats, err := im.Run(context.Background(), sliceSource{noName, item("4", "Globex")}, careerleaf.NewIDSet())
	require.NoError(t, err)

	assert.Equal(t, types.RunStats{Total: 2, Success: 1, Failed: 1}, stats)
	assert.Len(t, client.calls, 1)
	require.Len(t, rec.got, 1)
	assert.Equal(t, failures.KindData, rec.got[0].Kind)
	assert.Equal(t, "full_name=Jane Doe", rec.got[0].Identity)
	assert.ErrorIs(t, rec.got[0].Err, source.ErrMissingName)
}

func TestRunMalformedIDIsFatal(t *testing.T) {
	client := &fakeCreator{}
	im := New(client, nil, nil, Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme"), item("x1", "Bad")}, careerleaf.NewIDSet())
	assert.ErrorIs(t, err, ErrMalformedID)
	assert.Equal(t, 1, stats.Success)
}

func TestRunDuplicateIDIsFatal(t *testing.T) {
	client := &fakeCreator{}
	im := New(client, nil, nil, Options{})

	_, err := im.Run(context.Background(), sliceSource{item("1", "Acme"), item("1", "Acme again")}, careerleaf.NewIDSet())
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, client.calls, 1)
}

func TestRunLimitAllowsOneExtraAttempt(t *testing.T) {
	client := &fakeCreator{}
	im := New(client, nil, nil, Options{Limit: 2})

	var src sliceSource
	src = append(src, item("100", "Existing"))
	for i := 1; i <= 5; i++ {
		src = append(src, item(fmt.Sprint(i), fmt.Sprintf("Employer %d", i)))
	}

	stats, err := im.Run(context.Background(), src, careerleaf.NewIDSet(100))
	require.NoError(t, err)

	assert.Len(t, client.calls, 3)
	assert.Equal(t, types.RunStats{Total: 4, Success: 3, Skipped: 1}, stats)
}

func TestRunDryRun(t *testing.T) {
	client := &fakeCreator{}
	im := New(client, nil, nil, Options{DryRun: true})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme")}, careerleaf.NewIDSet())
	require.NoError(t, err)
	assert.Equal(t, types.RunStats{Total: 1, Success: 1}, stats)
	assert.Empty(t, client.calls)
}

func TestRunLogsProgressAndSummary(t *testing.T) {
	opCore, opLogs := observer.New(zapcore.InfoLevel)
	log := logger.NewWithCores(opCore, zapcore.NewNopCore())

	var src sliceSource
	for i := 1; i <= 20; i++ {
		src = append(src, item(fmt.Sprint(i), fmt.Sprintf("E%d", i)))
	}
	_, err := New(&fakeCreator{}, nil, log, Options{}).Run(context.Background(), src, careerleaf.NewIDSet())
	require.NoError(t, err)

	assert.Equal(t, 2, opLogs.FilterMessage("processing record").Len())
	assert.Equal(t, 1, opLogs.FilterMessage("parsed 20 records, 20 are successful, 0 are failed, 0 skipped").Len())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&fakeCreator{}, nil, nil, Options{}).Run(ctx, sliceSource{item("1", "Acme")}, careerleaf.NewIDSet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecorderErrorDoesNotStopRun(t *testing.T) {
	client := &fakeCreator{results: map[int64]careerleaf.CreateResult{1: {StatusCode: 400}}}
	im := New(client, failingRecorder{}, logger.NewWithCores(zapcore.NewNopCore(), zapcore.NewNopCore()), Options{})

	stats, err := im.Run(context.Background(), sliceSource{item("1", "Acme"), item("2", "B")}, careerleaf.NewIDSet())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Success)
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, failures.Failure) error {
	return errors.New("store unavailable")
}
