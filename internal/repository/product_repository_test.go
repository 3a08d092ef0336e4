package repository

import (
	"sync"
	"testing"

	"github.com/greencart/internal/models"
)

func TestReserveStockConditionalDecrement(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "Bamboo Toothbrush", "4.50", 3, nil)

	affected, err := repo.ReserveStock(product.ID, 2)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("reserve affected want 1 got %d", affected)
	}

	affected, err = repo.ReserveStock(product.ID, 2)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("reserve beyond stock should affect 0 rows, got %d", affected)
	}

	if err := repo.ReleaseStock(product.ID, 2); err != nil {
		t.Fatalf("release stock failed: %v", err)
	}
	reloaded, err := repo.GetByID(product.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("stock want 3 got %d", reloaded.Stock)
	}
}

func TestReserveStockConcurrentNeverOversells(t *testing.T) {
	db := setupRepositoryTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "Reusable Bag", "2.00", 5, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.ReserveStock(product.ID, 1)
			if err != nil {
				return
			}
			mu.Lock()
			succeeded += int(affected)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Fatalf("successful reservations want 5 got %d", succeeded)
	}
	reloaded, _ := repo.GetByID(product.ID)
	if reloaded.Stock != 0 {
		t.Fatalf("stock want 0 got %d", reloaded.Stock)
	}
}

func TestStockCheckConstraintRejectsNegative(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, "Compost Bin", "30.00", 1, nil)

	if _, err := repo.SetStock(product.ID, -1); err == nil {
		t.Fatalf("negative stock should violate check constraint")
	}
}

func TestProductListFilters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)
	kitchen := &models.Category{Name: "Kitchen"}
	if err := db.Create(kitchen).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	createTestProduct(t, db, "Bamboo Spoon", "3.00", 10, &kitchen.ID)
	createTestProduct(t, db, "Bamboo Toothbrush", "4.50", 10, nil)
	createTestProduct(t, db, "Steel Straw_Set", "12.00", 10, &kitchen.ID)

	items, total, err := repo.List(ProductListFilter{Search: "bamboo"})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("search bamboo want 2 got %d", total)
	}

	_, total, err = repo.List(ProductListFilter{CategoryName: "Kitchen", MinPrice: "5"})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("kitchen with min price want 1 got %d", total)
	}

	_, total, err = repo.List(ProductListFilter{Search: "_"})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("underscore should match literally, got %d", total)
	}

	_, total, err = repo.List(ProductListFilter{MaxPrice: "not-a-number"})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("invalid max price should be ignored, got %d", total)
	}
}

func TestCategoryDeleteNullsProductCategory(t *testing.T) {
	db := setupRepositoryTestDB(t)
	categories := NewCategoryRepository(db)
	garden := &models.Category{Name: "Garden"}
	if err := categories.Create(garden); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := createTestProduct(t, db, "Seed Pack", "1.50", 4, &garden.ID)

	if err := categories.Delete(garden.ID); err != nil {
		t.Fatalf("delete category failed: %v", err)
	}
	reloaded, err := NewProductRepository(db).GetByID(product.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Fatalf("category id should be nil after delete, got %v", *reloaded.CategoryID)
	}
}
