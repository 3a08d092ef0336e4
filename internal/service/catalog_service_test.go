package service

import (
	"context"
	"testing"
	"time"

	"github.com/greencart/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestProductLifecycleAndStock(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()
	categories := NewCategoryService(repository.NewCategoryRepository(svc.db))
	category, err := categories.Create(CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)
	_, err = categories.Create(CategoryInput{Name: "Kitchen"})
	require.ErrorIs(t, err, ErrCategoryNameExists)

	stock := 3
	categoryID := category.ID
	product, err := svc.products.Create(ctx, ProductInput{Name: "Bamboo Spoon", Price: "4.20", Stock: &stock, CategoryID: &categoryID})
	require.NoError(t, err)
	require.Equal(t, "4.20", product.Price.String())
	require.NotNil(t, product.CategoryID)

	_, err = svc.products.Create(ctx, ProductInput{Name: "Broken", Price: "abc"})
	require.ErrorIs(t, err, ErrValidation)

	updated, err := svc.products.UpdateStock(ctx, product.ID, 12)
	require.NoError(t, err)
	require.Equal(t, 12, updated.Stock)
	_, err = svc.products.UpdateStock(ctx, product.ID, -1)
	require.ErrorIs(t, err, ErrInvalidStock)
	_, err = svc.products.UpdateStock(ctx, 4242, 1)
	require.ErrorIs(t, err, ErrNotFound)

	items, total, err := svc.products.List(ctx, repository.ProductListFilter{Page: 1, PageSize: 10, CategoryName: "Kitchen"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	alice := seedCustomer(t, svc.db, "alice")
	bob := seedCustomer(t, svc.db, "bob")
	_, err = svc.ratings.Create(customerActor(alice), RatingInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = svc.ratings.Create(customerActor(bob), RatingInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	detail, err := svc.products.Get(product.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, detail.Rating.Count)
	require.InDelta(t, 4.5, detail.Rating.Average, 0.001)

	require.NoError(t, svc.products.Delete(ctx, product.ID))
	_, err = svc.products.Get(product.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRatingRules(t *testing.T) {
	svc := setupServiceTest(t)
	alice := seedCustomer(t, svc.db, "alice")
	bob := seedCustomer(t, svc.db, "bob")
	product := seedProduct(t, svc.db, "Neem Comb", "6.00", 1)

	_, err := svc.ratings.Create(customerActor(alice), RatingInput{ProductID: product.ID, Rating: 6})
	require.ErrorIs(t, err, ErrRatingOutOfRange)
	_, err = svc.ratings.Create(customerActor(alice), RatingInput{ProductID: 4242, Rating: 3})
	require.ErrorIs(t, err, ErrProductNotFound)

	rating, err := svc.ratings.Create(customerActor(alice), RatingInput{ProductID: product.ID, Rating: 3, Review: "ok"})
	require.NoError(t, err)
	_, err = svc.ratings.Create(customerActor(alice), RatingInput{ProductID: product.ID, Rating: 4})
	require.ErrorIs(t, err, ErrRatingExists)

	updated, err := svc.ratings.Update(customerActor(alice), rating.ID, RatingInput{Rating: 5, Review: "great"})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Rating)
	_, err = svc.ratings.Update(customerActor(bob), rating.ID, RatingInput{Rating: 1})
	require.ErrorIs(t, err, ErrNotFound)

	mine, total, err := svc.ratings.ListMine(customerActor(alice), 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "great", mine[0].Review)
	require.NoError(t, svc.ratings.Delete(customerActor(alice), rating.ID))
}

func TestRecommendationRules(t *testing.T) {
	svc := setupServiceTest(t)
	soap := seedProduct(t, svc.db, "Olive Soap", "3.00", 1)
	dish := seedProduct(t, svc.db, "Soap Dish", "8.00", 1)

	_, err := svc.recs.Create(soap.ID, soap.ID)
	require.ErrorIs(t, err, ErrRecommendationSelf)
	_, err = svc.recs.Create(soap.ID, 4242)
	require.ErrorIs(t, err, ErrProductNotFound)

	rec, err := svc.recs.Create(soap.ID, dish.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.RecommendedProduct)
	require.Equal(t, "Soap Dish", rec.RecommendedProduct.Name)
	_, err = svc.recs.Create(soap.ID, dish.ID)
	require.ErrorIs(t, err, ErrRecommendationDuplicated)

	recs, total, err := svc.recs.List(repository.RecommendationListFilter{ProductID: soap.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, recs, 1)

	require.NoError(t, svc.recs.Delete(rec.ID))
	require.ErrorIs(t, svc.recs.Delete(rec.ID), ErrNotFound)
}

func TestCouponValidation(t *testing.T) {
	svc := setupServiceTest(t)
	now := time.Now()
	inactive := false
	_, err := svc.coupons.Create(CouponInput{Code: "SPRING", DiscountAmount: "5", ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour)})
	require.NoError(t, err)
	_, err = svc.coupons.Create(CouponInput{Code: "OLD", DiscountAmount: "5", ValidFrom: now.Add(-48 * time.Hour), ValidTo: now.Add(-24 * time.Hour)})
	require.NoError(t, err)
	paused, err := svc.coupons.Create(CouponInput{Code: "PAUSED", DiscountAmount: "5", ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: &inactive})
	require.NoError(t, err)
	require.False(t, paused.Active)

	_, err = svc.coupons.Create(CouponInput{Code: "SPRING", DiscountAmount: "1", ValidFrom: now, ValidTo: now.Add(time.Hour)})
	require.ErrorIs(t, err, ErrCouponCodeExists)
	_, err = svc.coupons.Create(CouponInput{Code: "BACKWARDS", DiscountAmount: "1", ValidFrom: now, ValidTo: now.Add(-time.Hour)})
	require.ErrorIs(t, err, ErrValidation)

	coupon, err := svc.coupons.Validate("SPRING", now)
	require.NoError(t, err)
	require.Equal(t, "5.00", coupon.DiscountAmount.String())
	for _, code := range []string{"OLD", "PAUSED", "MISSING"} {
		_, err := svc.coupons.Validate(code, now)
		require.ErrorIs(t, err, ErrInvalidCoupon, code)
	}

	public, total, err := svc.coupons.ListPublic(1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "SPRING", public[0].Code)
}
