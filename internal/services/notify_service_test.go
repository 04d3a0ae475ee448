package services

import (
	"context"
	"testing"

	gateway "github.com/rumahkitanet/wa-notify/internal/gateways"
	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/rumahkitanet/wa-notify/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Customer), args.Error(1)
}

type MockNoticeRepository struct {
	mock.Mock
}

func (m *MockNoticeRepository) Get(ctx context.Context, id int64) (*model.NetworkNotice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NetworkNotice), args.Error(1)
}

func (m *MockNoticeRepository) List(ctx context.Context, activeOnly bool) ([]*model.NetworkNotice, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.NetworkNotice), args.Error(1)
}

func (m *MockNoticeRepository) LatestActive(ctx context.Context) (*model.NetworkNotice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NetworkNotice), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Send(ctx context.Context, phone, message string) gateway.AckResult {
	args := m.Called(ctx, phone, message)
	return args.Get(0).(gateway.AckResult)
}

func (m *MockGateway) SendBulk(ctx context.Context, recipients []model.Recipient, message string) gateway.BulkResult {
	args := m.Called(ctx, recipients, message)
	return args.Get(0).(gateway.BulkResult)
}

func newTestService() (*NotifyService, *MockCustomerRepository, *MockNoticeRepository, *MockGateway) {
	customers := new(MockCustomerRepository)
	notices := new(MockNoticeRepository)
	wa := new(MockGateway)
	return NewNotifyService(customers, notices, wa), customers, notices, wa
}

/* -------------------------------- Dispatch -------------------------------- */

func TestNotifyService_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid recipients come first, valid batch forwarded once", func(t *testing.T) {
		svc, _, _, wa := newTestService()

		recipients := []model.Recipient{
			{Phone: "081234567890", Name: "Budi", ID: 1},
			{Phone: "0", Name: "Sari", ID: 2},
			{Phone: "081234567891", Name: "Agus", ID: 3},
			{Phone: "", Name: "Dewi", ID: 4},
		}

		wa.On("SendBulk", ctx, mock.MatchedBy(func(batch []model.Recipient) bool {
			return len(batch) == 2 && batch[0].ID == 1 && batch[1].ID == 3
		}), "hello").Return(gateway.BulkResult{Results: []model.SendResult{
			{Phone: "628123456789", CustomerName: "Budi", Success: true},
			{Phone: "628123456789", CustomerName: "Agus", Success: true},
		}})

		results, skipped := svc.Dispatch(ctx, recipients, "hello")

		require.Len(t, results, 4)
		assert.Equal(t, 2, skipped)

		// invalid subset first, original relative order
		assert.Equal(t, "Sari", results[0].CustomerName)
		assert.Equal(t, ReasonInvalidPhone, results[0].Error)
		assert.Equal(t, "Dewi", results[1].CustomerName)
		assert.Equal(t, ReasonInvalidPhone, results[1].Error)

		assert.True(t, results[2].Success)
		assert.True(t, results[3].Success)

		wa.AssertNumberOfCalls(t, "SendBulk", 1)
	})

	t.Run("gateway batch error synthesizes one failure per valid recipient", func(t *testing.T) {
		svc, _, _, wa := newTestService()

		recipients := []model.Recipient{
			{Phone: "081234567890", Name: "Budi", ID: 1},
			{Phone: "081234567891", Name: "Agus", ID: 3},
		}

		wa.On("SendBulk", ctx, mock.Anything, "hello").
			Return(gateway.BulkResult{Error: "gateway unavailable: dial tcp: connection refused, ensure the gateway process is running at http://localhost:3001"})

		results, skipped := svc.Dispatch(ctx, recipients, "hello")

		require.Len(t, results, 2)
		assert.Equal(t, 0, skipped)
		for _, r := range results {
			assert.False(t, r.Success)
			assert.Contains(t, r.Error, "gateway unavailable")
		}
	})

	t.Run("all invalid means no gateway call", func(t *testing.T) {
		svc, _, _, wa := newTestService()

		results, skipped := svc.Dispatch(ctx, []model.Recipient{
			{Phone: "0", Name: "Sari", ID: 2},
		}, "hello")

		require.Len(t, results, 1)
		assert.Equal(t, 1, skipped)
		wa.AssertNotCalled(t, "SendBulk")
	})

	t.Run("empty recipient list", func(t *testing.T) {
		svc, _, _, wa := newTestService()

		results, skipped := svc.Dispatch(ctx, nil, "hello")
		assert.Empty(t, results)
		assert.Equal(t, 0, skipped)
		wa.AssertNotCalled(t, "SendBulk")
	})
}

/* ---------------------------- SendNotification ----------------------------- */

func TestNotifyService_SendNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit notice id not found", func(t *testing.T) {
		svc, _, notices, _ := newTestService()
		id := int64(42)
		notices.On("Get", ctx, id).Return(nil, repository.ErrNoticeNotFound)

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{NoticeID: &id})
		assert.ErrorIs(t, err, ErrNoticeNotFound)
		assert.Nil(t, summary)
	})

	t.Run("no active notice", func(t *testing.T) {
		svc, _, notices, _ := newTestService()
		notices.On("LatestActive", ctx).Return(nil, repository.ErrNoActiveNotice)

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{})
		assert.ErrorIs(t, err, ErrNoActiveNotice)
		assert.Nil(t, summary)
	})

	t.Run("empty affected_odp targets all active customers", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()

		notices.On("LatestActive", ctx).Return(&model.NetworkNotice{
			ID: 1, Title: "Fiber cut", Message: "backbone down",
			Type: model.NoticeTypeOutage, Severity: model.SeverityHigh, IsActive: true,
		}, nil)

		customers.On("List", ctx, model.CustomerFilter{ActiveOnly: true}).
			Return([]*model.Customer{
				{ID: 1, Name: "Budi", Phone: "081234567890", IsActive: true},
			}, nil)

		wa.On("SendBulk", ctx, mock.Anything, mock.Anything).
			Return(gateway.BulkResult{Results: []model.SendResult{
				{Phone: "628123456789", CustomerName: "Budi", Success: true},
			}})

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.TotalCustomers)
		assert.Equal(t, 1, summary.SentCount)
		customers.AssertExpectations(t)
	})

	t.Run("affected_odp narrows the target set", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()

		notices.On("LatestActive", ctx).Return(&model.NetworkNotice{
			ID: 2, Title: "Power outage", Message: "area blackout",
			AffectedODP: "ODP-01, ODP-02", IsActive: true,
		}, nil)

		customers.On("List", ctx, model.CustomerFilter{
			ActiveOnly: true,
			ODPIn:      []string{"ODP-01", "ODP-02"},
		}).Return([]*model.Customer{
			{ID: 3, Name: "Agus", Phone: "081234567891", ODP: "ODP-02", IsActive: true},
		}, nil)

		wa.On("SendBulk", ctx, mock.Anything, mock.Anything).
			Return(gateway.BulkResult{Results: []model.SendResult{
				{Phone: "628123456789", CustomerName: "Agus", Success: true},
			}})

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SentCount)
		customers.AssertExpectations(t)
	})

	t.Run("explicit customer ids override affected_odp", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()

		notices.On("LatestActive", ctx).Return(&model.NetworkNotice{
			ID: 2, Title: "Power outage", Message: "area blackout",
			AffectedODP: "ODP-01", IsActive: true,
		}, nil)

		customers.On("List", ctx, model.CustomerFilter{
			ActiveOnly: true,
			IDs:        []int64{7, 9},
		}).Return([]*model.Customer{}, nil)

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{CustomerIDs: []int64{7, 9}})
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalCustomers)
		wa.AssertNotCalled(t, "SendBulk")
		customers.AssertExpectations(t)
	})

	t.Run("empty target set short-circuits without gateway call", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()

		notices.On("LatestActive", ctx).Return(&model.NetworkNotice{
			ID: 1, Title: "Fiber cut", Message: "backbone down", IsActive: true,
		}, nil)
		customers.On("List", ctx, mock.Anything).Return([]*model.Customer{}, nil)

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{})
		require.NoError(t, err)
		assert.True(t, summary.Success)
		assert.Equal(t, 0, summary.TotalCustomers)
		assert.Equal(t, 0, summary.SentCount)
		assert.Equal(t, 0, summary.FailedCount)
		assert.Equal(t, 0, summary.SkippedCount)
		assert.Empty(t, summary.Results)
		wa.AssertNotCalled(t, "SendBulk")
	})

	t.Run("custom message overrides the notice text", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()

		notices.On("LatestActive", ctx).Return(&model.NetworkNotice{
			ID: 1, Title: "Fiber cut", Message: "backbone down", IsActive: true,
		}, nil)
		customers.On("List", ctx, mock.Anything).Return([]*model.Customer{
			{ID: 1, Name: "Budi", Phone: "081234567890", IsActive: true},
		}, nil)

		wa.On("SendBulk", ctx, mock.Anything, "short heads-up").
			Return(gateway.BulkResult{Results: []model.SendResult{
				{Phone: "628123456789", CustomerName: "Budi", Success: true},
			}})

		_, err := svc.SendNotification(ctx, model.SendNotificationRequest{CustomMessage: "short heads-up"})
		require.NoError(t, err)
		wa.AssertExpectations(t)
	})

	t.Run("skipped and failed are counted separately", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()

		notices.On("LatestActive", ctx).Return(&model.NetworkNotice{
			ID: 1, Title: "Fiber cut", Message: "backbone down", IsActive: true,
		}, nil)
		customers.On("List", ctx, mock.Anything).Return([]*model.Customer{
			{ID: 1, Name: "Budi", Phone: "081234567890", IsActive: true},
			{ID: 2, Name: "Sari", Phone: "0", IsActive: true},
			{ID: 3, Name: "Agus", Phone: "081234567891", IsActive: true},
		}, nil)

		wa.On("SendBulk", ctx, mock.Anything, mock.Anything).
			Return(gateway.BulkResult{Results: []model.SendResult{
				{Phone: "628123456789", CustomerName: "Budi", Success: true},
				{Phone: "628123456780", CustomerName: "Agus", Success: false, Error: "Nomor tidak terdaftar di WhatsApp"},
			}})

		summary, err := svc.SendNotification(ctx, model.SendNotificationRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalCustomers)
		assert.Equal(t, 1, summary.SentCount)
		assert.Equal(t, 1, summary.FailedCount)
		assert.Equal(t, 1, summary.SkippedCount)
		assert.Len(t, summary.Results, 3)
		assert.NotEmpty(t, summary.DispatchID)
	})
}

/* ------------------------------- SendCustom -------------------------------- */

func TestNotifyService_SendCustom(t *testing.T) {
	ctx := context.Background()

	t.Run("verbatim message to selected customers", func(t *testing.T) {
		svc, customers, _, wa := newTestService()

		customers.On("List", ctx, model.CustomerFilter{
			ActiveOnly: true,
			IDs:        []int64{1},
		}).Return([]*model.Customer{
			{ID: 1, Name: "Budi", Phone: "081234567890", IsActive: true},
		}, nil)

		wa.On("SendBulk", ctx, mock.Anything, "Halo {nama}, tagihan Anda sudah terbit.").
			Return(gateway.BulkResult{Results: []model.SendResult{
				{Phone: "628123456789", CustomerName: "Budi", Success: true},
			}})

		summary, err := svc.SendCustom(ctx, model.SendCustomMessageRequest{
			Message:     "Halo {nama}, tagihan Anda sudah terbit.",
			CustomerIDs: []int64{1},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SentCount)
		wa.AssertExpectations(t)
	})

	t.Run("no matching customers", func(t *testing.T) {
		svc, customers, _, wa := newTestService()
		customers.On("List", ctx, mock.Anything).Return([]*model.Customer{}, nil)

		summary, err := svc.SendCustom(ctx, model.SendCustomMessageRequest{Message: "ping"})
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalCustomers)
		wa.AssertNotCalled(t, "SendBulk")
	})
}

/* -------------------------------- SendByODP -------------------------------- */

func TestNotifyService_SendByODP(t *testing.T) {
	ctx := context.Background()

	t.Run("missing notice id and custom message fails before any query", func(t *testing.T) {
		svc, customers, _, wa := newTestService()

		summary, err := svc.SendByODP(ctx, "ODP-01", model.SendNotificationRequest{})
		assert.ErrorIs(t, err, ErrMessageRequired)
		assert.Nil(t, summary)
		customers.AssertNotCalled(t, "List")
		wa.AssertNotCalled(t, "SendBulk")
	})

	t.Run("path odp wins over notice affected_odp", func(t *testing.T) {
		svc, customers, notices, wa := newTestService()
		id := int64(5)

		notices.On("Get", ctx, id).Return(&model.NetworkNotice{
			ID: 5, Title: "Splice work", Message: "short interruption",
			AffectedODP: "ODP-07,ODP-08", IsActive: true,
		}, nil)

		odp := "ODP-01"
		customers.On("List", ctx, model.CustomerFilter{ActiveOnly: true, ODP: &odp}).
			Return([]*model.Customer{
				{ID: 1, Name: "Budi", Phone: "081234567890", ODP: "ODP-01", IsActive: true},
			}, nil)

		wa.On("SendBulk", ctx, mock.Anything, mock.Anything).
			Return(gateway.BulkResult{Results: []model.SendResult{
				{Phone: "628123456789", CustomerName: "Budi", Success: true},
			}})

		summary, err := svc.SendByODP(ctx, "ODP-01", model.SendNotificationRequest{NoticeID: &id})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SentCount)
		customers.AssertExpectations(t)
	})

	t.Run("custom message without notice id", func(t *testing.T) {
		svc, customers, _, wa := newTestService()

		odp := "ODP-02"
		customers.On("List", ctx, model.CustomerFilter{ActiveOnly: true, ODP: &odp}).
			Return([]*model.Customer{}, nil)

		summary, err := svc.SendByODP(ctx, "ODP-02", model.SendNotificationRequest{CustomMessage: "heads-up"})
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalCustomers)
		wa.AssertNotCalled(t, "SendBulk")
	})

	t.Run("referenced notice missing", func(t *testing.T) {
		svc, _, notices, _ := newTestService()
		id := int64(404)
		notices.On("Get", ctx, id).Return(nil, repository.ErrNoticeNotFound)

		summary, err := svc.SendByODP(ctx, "ODP-01", model.SendNotificationRequest{NoticeID: &id})
		assert.ErrorIs(t, err, ErrNoticeNotFound)
		assert.Nil(t, summary)
	})
}

/* ------------------------------- SendToPhone ------------------------------- */

func TestNotifyService_SendToPhone(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid phone rejected locally", func(t *testing.T) {
		svc, _, _, wa := newTestService()

		ack := svc.SendToPhone(ctx, model.SendToPhoneRequest{Phone: "0", Message: "ping"})
		assert.False(t, ack.Success)
		assert.Equal(t, ReasonInvalidPhone, ack.Error)
		wa.AssertNotCalled(t, "Send")
	})

	t.Run("valid phone passes through", func(t *testing.T) {
		svc, _, _, wa := newTestService()

		wa.On("Send", ctx, "081234567890", "ping").
			Return(gateway.AckResult{Success: true, Phone: "628123456789"})

		ack := svc.SendToPhone(ctx, model.SendToPhoneRequest{Phone: "081234567890", Message: "ping"})
		assert.True(t, ack.Success)
		wa.AssertExpectations(t)
	})
}
