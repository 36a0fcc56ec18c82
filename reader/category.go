package reader

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"greader/feed"
)

// Category - системный поток состояния пользователя (user/-/state/com.google/<category>).
type Category string

const (
	CategoryRead                 Category = "read"
	CategoryBroadcast            Category = "broadcast"
	CategoryStarred              Category = "starred"
	CategorySubscriptions        Category = "subscriptions"
	CategoryTrackingEmailed      Category = "tracking-emailed"
	CategoryTrackingItemLinkUsed Category = "tracking-item-link-used"
	CategoryTrackingBodyLinkUsed Category = "tracking-body-link-used"
)

// Categories перечисляет категории, для которых у Client есть отдельные методы.
var Categories = []Category{
	CategoryRead,
	CategoryBroadcast,
	CategoryStarred,
	CategorySubscriptions,
	CategoryTrackingEmailed,
	CategoryTrackingItemLinkUsed,
	CategoryTrackingBodyLinkUsed,
}

// ParseCategory проверяет имя категории.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.TrimSpace(name))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// Path возвращает путь потока относительно /reader/atom/.
func (c Category) Path() string {
	return "user/-/state/com.google/" + string(c)
}

// LabelPath возвращает путь потока пользовательской метки.
func LabelPath(label string) string {
	return "user/-/label/" + url.PathEscape(label)
}

// Items получает ленту указанной категории.
func (c *Client) Items(ctx context.Context, category Category, opts ListOptions) (*feed.Feed, error) {
	return c.ReadFeed(ctx, category.Path(), opts)
}

// ReadItems возвращает прочитанные записи.
func (c *Client) ReadItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategoryRead, opts)
}

// BroadcastItems возвращает записи, которыми поделился пользователь.
func (c *Client) BroadcastItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategoryBroadcast, opts)
}

// StarredItems возвращает отмеченные звездой записи.
func (c *Client) StarredItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategoryStarred, opts)
}

// SubscriptionsItems возвращает записи из подписок пользователя.
func (c *Client) SubscriptionsItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategorySubscriptions, opts)
}

// TrackingEmailedItems возвращает записи, отправленные по почте.
func (c *Client) TrackingEmailedItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategoryTrackingEmailed, opts)
}

// TrackingItemLinkUsedItems возвращает записи, по ссылке которых переходили.
func (c *Client) TrackingItemLinkUsedItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategoryTrackingItemLinkUsed, opts)
}

// TrackingBodyLinkUsedItems возвращает записи, по ссылкам из текста которых переходили.
func (c *Client) TrackingBodyLinkUsedItems(ctx context.Context, opts ListOptions) (*feed.Feed, error) {
	return c.Items(ctx, CategoryTrackingBodyLinkUsed, opts)
}
