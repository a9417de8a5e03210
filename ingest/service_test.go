package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/infrastructure/communication"
	"shiftinsight.com/shiftinsight/loader"
)

type notifierSpy struct {
	completed []*loader.Summary
	failed    []error
}

func (n *notifierSpy) LoadCompleted(ctx context.Context, summary *loader.Summary) error {
	n.completed = append(n.completed, summary)
	return nil
}

func (n *notifierSpy) LoadFailed(ctx context.Context, loadID, filename string, cause error) error {
	n.failed = append(n.failed, cause)
	return nil
}

func newService(t *testing.T) (*Service, sqlmock.Sqlmock, *notifierSpy) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger, _ := test.NewNullLogger()
	spy := &notifierSpy{}
	svc := New(&core.DatabaseManager{SqlDB: sqlDB, LogLevel: core.LogLevelSilent}, Options{
		Loader:    loader.Options{Logger: logger},
		Notifiers: communication.Notifiers{spy},
	})
	return svc, mock, spy
}

func expectVersion(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT VERSION\\(\\)").WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))
}

func expectSavedRun(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `load_runs`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestServiceLoadEmptySheet(t *testing.T) {
	svc, mock, spy := newService(t)
	expectVersion(mock)
	for _, table := range []string{"dim_employees", "dim_clients", "dim_jobs", "dim_shifts", "dim_dates"} {
		mock.ExpectQuery("FROM `" + table + "`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}
	expectSavedRun(mock)

	var events []loader.Event
	header := strings.Join(loader.RequiredColumns, ",") + "\n"
	summary, err := svc.Load(context.Background(), loader.Input{
		LoadID:   "5f0c1a4e-3b7d-4c55-9a53-2f4a0e7d9b11",
		Filename: "empty.csv",
		Reader:   strings.NewReader(header),
	}, core.SourceCLI, func(e loader.Event) { events = append(events, e) })

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, "5f0c1a4e-3b7d-4c55-9a53-2f4a0e7d9b11", summary.LoadID)
	require.NotEmpty(t, events)
	assert.Equal(t, loader.StatusComplete, events[len(events)-1].Status)
	assert.Len(t, spy.completed, 1)
	assert.Empty(t, spy.failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceLoadRecordsFailure(t *testing.T) {
	svc, mock, spy := newService(t)
	expectVersion(mock)
	expectSavedRun(mock)

	var events []loader.Event
	summary, err := svc.Load(context.Background(), loader.Input{
		Filename: "partial.csv",
		Reader:   strings.NewReader("Full Name,Date\nJane,2024-03-01\n"),
	}, core.SourceUpload, func(e loader.Event) { events = append(events, e) })

	var missing *loader.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Nil(t, summary)
	assert.Equal(t, loader.StatusError, events[len(events)-1].Status)
	require.Len(t, spy.failed, 1)
	assert.ErrorAs(t, spy.failed[0], &missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceLoadWithoutConnection(t *testing.T) {
	svc, mock, spy := newService(t)
	mock.ExpectQuery("SELECT VERSION\\(\\)").WillReturnError(errors.New("connection refused"))

	var events []loader.Event
	_, err := svc.Load(context.Background(), loader.Input{
		Filename: "march.xlsx",
		Reader:   strings.NewReader(""),
	}, core.SourceUpload, func(e loader.Event) { events = append(events, e) })

	require.Error(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, loader.StatusError, events[0].Status)
	assert.Contains(t, events[0].Message, "Upload error:")
	assert.Len(t, spy.failed, 1)
}

func TestNotifiers(t *testing.T) {
	cfg := &config.Configuration{}
	notifiers, err := Notifiers(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, notifiers)

	cfg.Slack = config.SlackOptions{Token: "xoxb-test", InfoChannelID: "C1"}
	notifiers, err = Notifiers(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, notifiers, 1)
	assert.IsType(t, &communication.Slack{}, notifiers[0])
}
