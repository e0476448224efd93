package service

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/storefront-next/internal/models"
)

// 所有通知邮件共用的 HTML 外壳：Logo、状态标题、正文块
const emailShellTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="margin:0;padding:0;background:#f5f5f4;font-family:Helvetica,Arial,sans-serif;color:#1c1917;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="padding:24px 0;">
<tr><td align="center">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;padding:32px;">
<tr><td align="center" style="padding-bottom:24px;">
{{if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.ShopName}}" height="48">{{else}}<strong style="font-size:20px;">{{.ShopName}}</strong>{{end}}
</td></tr>
<tr><td><h1 style="font-size:22px;margin:0 0 16px;">{{.Title}}</h1></td></tr>
{{if .Intro}}<tr><td><p style="margin:0 0 12px;">{{.Intro}}</p></td></tr>{{end}}
{{if .Message}}<tr><td><p style="margin:0 0 12px;">{{.Message}}</p></td></tr>{{end}}
{{if .OrderID}}<tr><td><p style="margin:0 0 16px;color:#57534e;">{{.Labels.OrderID}}: <strong>{{.OrderID}}</strong></p></td></tr>{{end}}
{{if .Items}}
<tr><td>
<table role="presentation" width="100%" cellpadding="6" cellspacing="0" style="border-collapse:collapse;">
<tr style="border-bottom:1px solid #e7e5e4;text-align:left;"><th>{{.Labels.Item}}</th><th>{{.Labels.Quantity}}</th><th style="text-align:right;">{{.Labels.Price}}</th></tr>
{{range .Items}}<tr style="border-bottom:1px solid #f5f5f4;"><td>{{.Name}}{{if .SizeLabel}} ({{.SizeLabel}}){{end}}</td><td>{{.Quantity}}</td><td style="text-align:right;">{{.UnitPrice}}</td></tr>
{{end}}
</table>
</td></tr>
{{end}}
{{if .Totals}}
<tr><td>
<table role="presentation" width="100%" cellpadding="4" cellspacing="0" style="margin-top:12px;">
<tr><td>{{.Labels.Subtotal}}</td><td style="text-align:right;">{{.Totals.Subtotal}} {{.Totals.Currency}}</td></tr>
<tr><td>{{.Labels.Shipping}}</td><td style="text-align:right;">{{if .Totals.FreeShipping}}{{.Labels.ShippingFree}}{{else}}{{.Totals.Shipping}} {{.Totals.Currency}}{{end}}</td></tr>
<tr><td><strong>{{.Labels.Total}}</strong></td><td style="text-align:right;"><strong>{{.Totals.Total}} {{.Totals.Currency}}</strong></td></tr>
</table>
</td></tr>
{{end}}
{{if .AddressLines}}
<tr><td style="padding-top:16px;">
<p style="margin:0 0 4px;font-weight:bold;">{{.Labels.ShipTo}}</p>
{{range .AddressLines}}<div>{{.}}</div>{{end}}
</td></tr>
{{end}}
<tr><td style="padding-top:24px;color:#a8a29e;font-size:12px;">{{if .SiteURL}}<a href="{{.SiteURL}}" style="color:#a8a29e;">{{.ShopName}}</a>{{else}}{{.ShopName}}{{end}}</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`

var emailShell = template.Must(template.New("email_shell").Parse(emailShellTemplate))

type emailLabels struct {
	OrderID      string
	Item         string
	Quantity     string
	Price        string
	Subtotal     string
	Shipping     string
	ShippingFree string
	Total        string
	ShipTo       string
}

type emailTotals struct {
	Subtotal     string
	Shipping     string
	Total        string
	Currency     string
	FreeShipping bool
}

type emailShellData struct {
	Lang         string
	ShopName     string
	LogoURL      string
	SiteURL      string
	Title        string
	Intro        string
	Message      string
	OrderID      string
	Items        []models.LineItemSnapshot
	Totals       *emailTotals
	AddressLines []string
	Labels       emailLabels
}

func renderEmailShell(data emailShellData) (string, error) {
	var buf bytes.Buffer
	if err := emailShell.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatAddressLines 将收货信息格式化为地址行
func FormatAddressLines(customer models.CustomerInfo) []string {
	lines := make([]string, 0, 5)
	appendLine := func(parts ...string) {
		kept := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				kept = append(kept, part)
			}
		}
		if len(kept) > 0 {
			lines = append(lines, strings.Join(kept, " "))
		}
	}
	appendLine(customer.FullName())
	appendLine(customer.AddressLine1)
	appendLine(customer.AddressLine2)
	appendLine(customer.PostalCode, customer.City)
	appendLine(customer.Country)
	return lines
}
