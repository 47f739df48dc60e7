package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"marketplace/internal/checkout"
	"marketplace/internal/domain/model"
	"marketplace/internal/session"
	"marketplace/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var checkoutNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type checkoutDeps struct {
	orders    *OrderRepoMock
	audits    *AuditRepoMock
	storage   *StorageMock
	publisher *PublisherMock
	tx        *TxManagerFake
	uc        *usecase.CheckoutUsecase
}

func newCheckout() checkoutDeps {
	d := checkoutDeps{
		orders:    new(OrderRepoMock),
		audits:    new(AuditRepoMock),
		storage:   new(StorageMock),
		publisher: new(PublisherMock),
	}
	d.tx = newTx(d.orders, new(ProductRepoMock), d.audits)
	d.uc = usecase.NewCheckoutUsecase(d.tx, d.orders, d.storage, d.publisher,
		checkout.DefaultDeliveryFeeUSD, fixedClock{t: checkoutNow}, &seqIDs{}, zerolog.Nop())
	return d
}

func buyerSession(items ...model.Product) *session.Session {
	s := session.NewManager().Start(model.Profile{ID: "buyer-1", Role: model.RoleBuyer, FullName: "Ana"})
	for _, p := range items {
		s.Cart().Add(p)
	}
	return s
}

func product(id, seller string, price int64) model.Product {
	return model.Product{ID: id, SellerID: seller, Title: "T-" + id, PriceUSD: decimal.NewFromInt(price)}
}

// =====================
// PlaceOrders
// =====================

func TestCheckoutUsecase_PlaceOrders_EmptyCart(t *testing.T) {
	d := newCheckout()

	_, err := d.uc.PlaceOrders(context.Background(), buyerSession(), usecase.PlaceOrdersInput{
		PaymentRef: "12345678",
		Proof:      &usecase.Upload{ContentType: "image/png", Body: []byte{1}},
	})

	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "cart empty")
	d.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, d.tx.calls)
}

func TestCheckoutUsecase_PlaceOrders_MissingReference(t *testing.T) {
	d := newCheckout()

	_, err := d.uc.PlaceOrders(context.Background(), buyerSession(product("p1", "A", 10)), usecase.PlaceOrdersInput{PaymentRef: "  "})

	assertStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 0, d.tx.calls)
}

func TestCheckoutUsecase_PlaceOrders_OneOrderPerSellerWithDelivery(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10), product("p2", "B", 20))

	d.orders.On("Create", mock.Anything, mock.Anything).Return(nil, nil)
	d.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionPlaceOrder && l.ActorUserID == "buyer-1"
	})).Return(nil)
	d.publisher.On("Publish", mock.Anything, usecase.RoutingKeyOrderPlaced, mock.Anything).Return(nil)

	out, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{
		DeliveryNeeded: true,
		PaymentRef:     "0102-99887766",
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.MsgCheckoutSucceeded, out.Message)
	require.Len(t, out.Orders, 2)

	assert.Equal(t, "A", out.Orders[0].SellerID)
	assert.Equal(t, "15", out.Orders[0].TotalAmountUSD.String())
	assert.Equal(t, "B", out.Orders[1].SellerID)
	assert.Equal(t, "25", out.Orders[1].TotalAmountUSD.String())

	for _, o := range out.Orders {
		assert.Equal(t, model.OrderStatusPending, o.Status)
		assert.Equal(t, "buyer-1", o.BuyerID)
		assert.Equal(t, "7766", o.PaymentRefLast4)
		assert.Empty(t, o.PaymentProofURL)
		assert.True(t, o.DeliveryNeeded)
		assert.Len(t, o.ProductDetails, 1)
	}

	assert.Equal(t, 1, d.tx.calls)
	d.audits.AssertNumberOfCalls(t, "Create", 2)
	d.publisher.AssertNumberOfCalls(t, "Publish", 2)
	assert.Equal(t, 0, s.Cart().Len())
}

func TestCheckoutUsecase_PlaceOrders_KeepsLineAddedDuringCheckout(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10))

	//注文の保存中に同じセッションから商品が追加される
	d.orders.On("Create", mock.Anything, mock.Anything).Return(nil, nil).Run(func(mock.Arguments) {
		s.Cart().Add(product("p9", "B", 4))
	})
	d.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{PaymentRef: "1234"})
	require.NoError(t, err)

	require.Len(t, out.Orders, 1)
	require.Len(t, out.Orders[0].ProductDetails, 1)
	assert.Equal(t, "p1", out.Orders[0].ProductDetails[0].ProductID)

	lines := s.Cart().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p9", lines[0].ProductID)
}

func TestCheckoutUsecase_PlaceOrders_SameSellerNoDelivery(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10), product("p1", "A", 10), product("p2", "A", 3))

	d.orders.On("Create", mock.Anything, mock.Anything).Return(nil, nil)
	d.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{PaymentRef: "99"})
	require.NoError(t, err)

	require.Len(t, out.Orders, 1)
	assert.Equal(t, "23", out.Orders[0].TotalAmountUSD.String())
	assert.Len(t, out.Orders[0].ProductDetails, 3)
	assert.Equal(t, "99", out.Orders[0].PaymentRefLast4)
}

func TestCheckoutUsecase_PlaceOrders_ProofUploaded(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10))
	proof := &usecase.Upload{ContentType: "image/jpeg", Body: []byte("jpeg")}

	path := fmt.Sprintf("payments/buyer-1/%d", checkoutNow.UnixMilli())
	d.storage.On("Upload", mock.Anything, path, "image/jpeg", proof.Body).Return("http://minio/images/"+path, nil)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(nil, nil)
	d.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{PaymentRef: "12345678", Proof: proof})
	require.NoError(t, err)

	require.Len(t, out.Orders, 1)
	assert.Equal(t, "http://minio/images/"+path, out.Orders[0].PaymentProofURL)
	d.storage.AssertExpectations(t)
}

func TestCheckoutUsecase_PlaceOrders_ProofUploadFailureIsNotFatal(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10))

	d.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket down"))
	d.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.PaymentProofURL == ""
	})).Return(nil, nil)
	d.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{
		PaymentRef: "12345678",
		Proof:      &usecase.Upload{ContentType: "image/png", Body: []byte{1, 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.MsgCheckoutSucceeded, out.Message)
	require.Len(t, out.Orders, 1)
	assert.Empty(t, out.Orders[0].PaymentProofURL)
	assert.Equal(t, 0, s.Cart().Len())
}

func TestCheckoutUsecase_PlaceOrders_PersistFailureKeepsCart(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10), product("p2", "B", 20))

	d.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool { return o.SellerID == "A" })).Return(nil, nil)
	d.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool { return o.SellerID == "B" })).Return(nil, errors.New("insert failed"))
	d.audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{DeliveryNeeded: true, PaymentRef: "1234"})

	assertStatus(t, err, http.StatusInternalServerError)
	assertErrContains(t, err, usecase.MsgCheckoutFailed)
	assert.Equal(t, 2, s.Cart().Len())
	d.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_PlaceOrders_AuditFailureFailsCheckout(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10))

	d.orders.On("Create", mock.Anything, mock.Anything).Return(nil, nil)
	d.audits.On("Create", mock.Anything, mock.Anything).Return(errors.New("audit down"))

	_, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{PaymentRef: "1234"})

	assertStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, 1, s.Cart().Len())
}

func TestCheckoutUsecase_PlaceOrders_PublishFailureIsNotFatal(t *testing.T) {
	d := newCheckout()
	s := buyerSession(product("p1", "A", 10))

	d.orders.On("Create", mock.Anything, mock.Anything).Return(nil, nil)
	d.audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.publisher.On("Publish", mock.Anything, usecase.RoutingKeyOrderPlaced, mock.MatchedBy(func(ev usecase.OrderPlacedEvent) bool {
		return ev.SellerID == "A" && ev.BuyerID == "buyer-1"
	})).Return(errors.New("broker down"))

	out, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{PaymentRef: "1234"})
	require.NoError(t, err)
	assert.Len(t, out.Orders, 1)
	d.publisher.AssertExpectations(t)
}

func TestCheckoutUsecase_PlaceOrders_SellerForbidden(t *testing.T) {
	d := newCheckout()
	s := session.NewManager().Start(model.Profile{ID: "s1", Role: model.RoleSeller})
	s.Cart().Add(product("p1", "A", 10))

	_, err := d.uc.PlaceOrders(context.Background(), s, usecase.PlaceOrdersInput{PaymentRef: "1234"})
	assertStatus(t, err, http.StatusForbidden)
}

// =====================
// ListMyOrders
// =====================

func TestCheckoutUsecase_ListMyOrders(t *testing.T) {
	d := newCheckout()
	items := []model.Order{{ID: "o2"}, {ID: "o1"}}
	d.orders.On("ListByBuyerID", mock.Anything, "buyer-1").Return(items, nil)

	got, err := d.uc.ListMyOrders(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestCheckoutUsecase_ListMyOrders_DBError(t *testing.T) {
	d := newCheckout()
	d.orders.On("ListByBuyerID", mock.Anything, "buyer-1").Return(nil, errors.New("db"))

	_, err := d.uc.ListMyOrders(context.Background(), "buyer-1")
	assertStatus(t, err, http.StatusInternalServerError)
}
