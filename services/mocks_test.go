package services_test

import (
	"context"

	"chainside-gateway/chainside"
	"chainside-gateway/models"
	"chainside-gateway/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---- mock order repository ----

type mockOrderRepo struct {
	orders     map[uuid.UUID]*models.Order
	meta       map[string]string
	notes      []string
	statuses   []string
	txIDs      []string
	getErr     error
	metaErr    error
	setMetaErr error
	updateErr  error
}

func newMockOrderRepo(orders ...*models.Order) *mockOrderRepo {
	m := &mockOrderRepo{
		orders: make(map[uuid.UUID]*models.Order),
		meta:   make(map[string]string),
	}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func metaKey(id uuid.UUID, key string) string {
	return id.String() + "/" + key
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *mockOrderRepo) SetTransactionID(_ context.Context, id uuid.UUID, transactionID string) error {
	if o, ok := m.orders[id]; ok {
		o.TransactionID = &transactionID
	}
	m.txIDs = append(m.txIDs, transactionID)
	return nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status, note string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if o, ok := m.orders[id]; ok {
		o.Status = status
	}
	m.statuses = append(m.statuses, status)
	if note != "" {
		m.notes = append(m.notes, note)
	}
	return nil
}

func (m *mockOrderRepo) AddNote(_ context.Context, _ uuid.UUID, note string) error {
	m.notes = append(m.notes, note)
	return nil
}

func (m *mockOrderRepo) GetMeta(_ context.Context, id uuid.UUID, key string) (string, error) {
	if m.metaErr != nil {
		return "", m.metaErr
	}
	v, ok := m.meta[metaKey(id, key)]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

func (m *mockOrderRepo) SetMeta(_ context.Context, id uuid.UUID, key, value string) error {
	if m.setMetaErr != nil {
		return m.setMetaErr
	}
	m.meta[metaKey(id, key)] = value
	return nil
}

func (m *mockOrderRepo) Transaction(_ context.Context, fn func(repo repository.OrderRepository) error) error {
	return fn(m)
}

// ---- mock payment event producer ----

type mockProducer struct {
	events []models.PaymentEvent
	err    error
}

func (m *mockProducer) SendPaymentEvent(event models.PaymentEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// ---- mock Chainside processor ----

type mockProcessor struct {
	token     string
	tokenErr  error
	resp      *chainside.PaymentOrderResponse
	createErr error

	gotAccessToken string
	gotRequest     chainside.PaymentOrderRequest
}

func (m *mockProcessor) AccessToken(_ context.Context) (string, error) {
	return m.token, m.tokenErr
}

func (m *mockProcessor) CreatePaymentOrder(_ context.Context, accessToken string, order chainside.PaymentOrderRequest) (*chainside.PaymentOrderResponse, error) {
	m.gotAccessToken = accessToken
	m.gotRequest = order
	return m.resp, m.createErr
}

func (m *mockProcessor) TransactionURL(paymentUUID string) string {
	return "https://checkout.chainside.net/" + paymentUUID
}
