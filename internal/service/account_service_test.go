package service

import (
	"testing"
	"time"

	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethodMaskingAndUniqueness(t *testing.T) {
	svc := setupServiceTest(t)
	alice := seedCustomer(t, svc.db, "alice")
	bob := seedCustomer(t, svc.db, "bob")

	card, err := svc.paymentMethods.Create(customerActor(alice), PaymentMethodInput{MethodType: "credit_card", Details: "4242 4242 4242 4242"})
	require.NoError(t, err)
	require.Equal(t, constants.PaymentMethodCreditCard, card.MethodType)
	require.Equal(t, "****-****-****-4242", card.Details)

	var stored models.PaymentMethod
	require.NoError(t, svc.db.First(&stored, card.ID).Error)
	require.Equal(t, "****-****-****-4242", stored.Details)

	short, err := svc.paymentMethods.Create(customerActor(alice), PaymentMethodInput{MethodType: constants.PaymentMethodBankAccount, Details: "123"})
	require.NoError(t, err)
	require.Equal(t, "123", short.Details)

	_, err = svc.paymentMethods.Create(customerActor(alice), PaymentMethodInput{MethodType: constants.PaymentMethodCreditCard, Details: "5555555555554444"})
	require.ErrorIs(t, err, ErrPaymentMethodDuplicate)
	_, err = svc.paymentMethods.Create(customerActor(alice), PaymentMethodInput{MethodType: "PAYPAL", Details: "x"})
	require.ErrorIs(t, err, ErrPaymentMethodType)

	_, err = svc.paymentMethods.Get(customerActor(bob), card.ID)
	require.ErrorIs(t, err, ErrNotFound)
	bobCard, err := svc.paymentMethods.Create(customerActor(bob), PaymentMethodInput{MethodType: constants.PaymentMethodCreditCard, Details: "5555555555554444"})
	require.NoError(t, err)
	require.Equal(t, "****-****-****-4444", bobCard.Details)
}

func TestDeletePaymentMethodDetachesTransactions(t *testing.T) {
	svc := setupServiceTest(t)
	alice := seedCustomer(t, svc.db, "alice")
	card, err := svc.paymentMethods.Create(customerActor(alice), PaymentMethodInput{MethodType: constants.PaymentMethodDebitCard, Details: "4000056655665556"})
	require.NoError(t, err)

	order := &models.Order{CustomerID: alice.ID, Status: constants.OrderStatusCompleted}
	require.NoError(t, svc.db.Create(order).Error)
	pmID := card.ID
	txn := &models.Transaction{
		OrderID:               order.ID,
		CustomerID:            alice.ID,
		PaymentMethodID:       &pmID,
		TransactionID:         uuid.NewString(),
		Amount:                order.TotalAmount,
		Currency:              "usd",
		StripePaymentIntentID: "pi_detach",
		TransactionDate:       time.Now(),
	}
	require.NoError(t, svc.db.Create(txn).Error)

	require.NoError(t, svc.paymentMethods.Delete(customerActor(alice), card.ID))
	var reloaded models.Transaction
	require.NoError(t, svc.db.First(&reloaded, txn.ID).Error)
	require.Nil(t, reloaded.PaymentMethodID)
}

func TestAddressDefaultIsExclusive(t *testing.T) {
	svc := setupServiceTest(t)
	alice := seedCustomer(t, svc.db, "alice")
	bob := seedCustomer(t, svc.db, "bob")

	home, err := svc.addresses.Create(customerActor(alice), AddressInput{Street: "1 Elm St", City: "Portland", Country: "US", IsDefault: true})
	require.NoError(t, err)
	work, err := svc.addresses.Create(customerActor(alice), AddressInput{Street: "9 Oak Ave", City: "Portland", Country: "US", IsDefault: true})
	require.NoError(t, err)
	bobHome, err := svc.addresses.Create(customerActor(bob), AddressInput{Street: "2 Pine Rd", City: "Salem", Country: "US", IsDefault: true})
	require.NoError(t, err)

	list, err := svc.addresses.List(customerActor(alice))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, work.ID, list[0].ID)
	require.True(t, list[0].IsDefault)
	require.False(t, list[1].IsDefault)

	_, err = svc.addresses.Update(customerActor(alice), home.ID, AddressInput{Street: "1 Elm St", City: "Portland", Country: "US", IsDefault: true})
	require.NoError(t, err)
	list, err = svc.addresses.List(customerActor(alice))
	require.NoError(t, err)
	require.Equal(t, home.ID, list[0].ID)
	require.False(t, list[1].IsDefault)

	stillDefault, err := svc.addresses.Get(customerActor(bob), bobHome.ID)
	require.NoError(t, err)
	require.True(t, stillDefault.IsDefault)

	_, err = svc.addresses.Create(customerActor(alice), AddressInput{City: "Portland", Country: "US"})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, svc.addresses.Delete(customerActor(bob), home.ID), ErrNotFound)
}
