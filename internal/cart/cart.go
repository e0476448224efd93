// Package cart 购物车内存模型：行身份解析、合并、数量更新与合计。
//
// 这里不做任何 I/O，持久化由 service 层的 CartStore 在每次变更后整体写入。
package cart

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity 单行数量上限，累加结果在此截断
const MaxLineQuantity = 9999

// VariantRef 商品内嵌的规格引用
type VariantRef struct {
	ID        string          `json:"id"`
	SizeLabel string          `json:"size_label"`
	Price     decimal.Decimal `json:"price"`
}

// Item 加入购物车的商品描述
type Item struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
	Variants  []VariantRef    `json:"variants,omitempty"`
}

// Line 购物车行，VariantID 为行身份
type Line struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name"`
	SizeLabel string          `json:"size_label,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Subtotal 行小计
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ResolveLineIdentity 解析行身份
//
// 优先级：显式 VariantID > 内嵌规格列表第一项 > 商品 ID。
func ResolveLineIdentity(item Item) string {
	if id := strings.TrimSpace(item.VariantID); id != "" {
		return id
	}
	if len(item.Variants) > 0 {
		if id := strings.TrimSpace(item.Variants[0].ID); id != "" {
			return id
		}
	}
	return strings.TrimSpace(item.ProductID)
}

// Cart 有序购物车，同一身份最多一行
type Cart struct {
	lines []Line
}

// New 创建空购物车
func New() *Cart {
	return &Cart{lines: make([]Line, 0)}
}

// Restore 从持久化的行列表恢复购物车，并修正非法行
func Restore(lines []Line) *Cart {
	c := New()
	for _, line := range lines {
		id := strings.TrimSpace(line.VariantID)
		if id == "" || line.Quantity < 1 {
			continue
		}
		line.VariantID = id
		if idx := c.indexOf(id); idx >= 0 {
			c.lines[idx].Quantity = addQuantity(c.lines[idx].Quantity, line.Quantity)
			continue
		}
		line.Quantity = min(line.Quantity, MaxLineQuantity)
		c.lines = append(c.lines, line)
	}
	return c
}

// Lines 返回行列表副本
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line 查找行
func (c *Cart) Line(variantID string) (Line, bool) {
	idx := c.indexOf(strings.TrimSpace(variantID))
	if idx < 0 {
		return Line{}, false
	}
	return c.lines[idx], true
}

// Len 行数
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty 是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Add 加入商品，已存在同身份行时原地累加数量，结果不超过 MaxLineQuantity
// 返回值为该次变更后的行
func (c *Cart) Add(item Item, quantity int, sizeLabel string) Line {
	if quantity < 1 {
		quantity = 1
	}
	quantity = min(quantity, MaxLineQuantity)
	id := ResolveLineIdentity(item)
	if idx := c.indexOf(id); idx >= 0 {
		c.lines[idx].Quantity = addQuantity(c.lines[idx].Quantity, quantity)
		return c.lines[idx]
	}

	line := Line{
		ProductID: strings.TrimSpace(item.ProductID),
		VariantID: id,
		Name:      item.Name,
		SizeLabel: strings.TrimSpace(sizeLabel),
		UnitPrice: item.Price,
		Quantity:  quantity,
		ImageURL:  item.ImageURL,
	}
	// 回退到内嵌规格时，快照该规格的价格与名称
	if strings.TrimSpace(item.VariantID) == "" && len(item.Variants) > 0 && id == strings.TrimSpace(item.Variants[0].ID) {
		first := item.Variants[0]
		line.UnitPrice = first.Price
		if line.SizeLabel == "" {
			line.SizeLabel = first.SizeLabel
		}
	}
	c.lines = append(c.lines, line)
	return line
}

// Remove 移除行，不存在时无操作
func (c *Cart) Remove(variantID string) bool {
	idx := c.indexOf(strings.TrimSpace(variantID))
	if idx < 0 {
		return false
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return true
}

// UpdateQuantity 更新数量，quantity < 1 或超过上限时静默忽略
func (c *Cart) UpdateQuantity(variantID string, quantity int) bool {
	if quantity < 1 || quantity > MaxLineQuantity {
		return false
	}
	idx := c.indexOf(strings.TrimSpace(variantID))
	if idx < 0 {
		return false
	}
	if c.lines[idx].Quantity == quantity {
		return false
	}
	c.lines[idx].Quantity = quantity
	return true
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.lines = c.lines[:0]
}

// Total 按加入时的快照单价求和
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount 商品总件数
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// MarshalJSON 序列化为行数组
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Lines())
}

// UnmarshalJSON 从行数组反序列化
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = Restore(lines).lines
	return nil
}

func addQuantity(current, delta int) int {
	if delta > MaxLineQuantity-current {
		return MaxLineQuantity
	}
	return current + delta
}

func (c *Cart) indexOf(variantID string) int {
	if variantID == "" {
		return -1
	}
	for i := range c.lines {
		if c.lines[i].VariantID == variantID {
			return i
		}
	}
	return -1
}
