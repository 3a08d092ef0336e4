package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	productListVersionKey = "catalog:products:version"
	// ProductListTTL 商品列表缓存时间
	ProductListTTL = 60 * time.Second
)

// ProductListKey 根据当前版本号生成列表缓存键
func ProductListKey(ctx context.Context, fingerprint string) (string, error) {
	version, err := GetInt64(ctx, productListVersionKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("catalog:products:v%d:%s", version, fingerprint), nil
}

// InvalidateProductList 版本号递增，旧列表缓存随 TTL 自然过期
func InvalidateProductList(ctx context.Context) error {
	_, err := Incr(ctx, productListVersionKey)
	return err
}
