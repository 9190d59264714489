package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

type paymentView struct {
	Nome      string
	PedidoID  int64
	DataFesta string
	Valor     string
	Tipo      string
	Mensagem  string
}

const paymentText = `Olá, {{.Nome}}!

Recebemos o seu pagamento ({{.Tipo}}) no valor de R$ {{.Valor}} referente ao pedido #{{.PedidoID}}.
{{.Mensagem}}

Data da festa: {{.DataFesta}}

Equipe Cabana de Brincar
`

const paymentHTML = `<p>Olá, <strong>{{.Nome}}</strong>!</p>
<p>Recebemos o seu pagamento (<strong>{{.Tipo}}</strong>) no valor de <strong>R$ {{.Valor}}</strong> referente ao pedido #{{.PedidoID}}.</p>
<p>{{.Mensagem}}</p>
<p>Data da festa: {{.DataFesta}}</p>
<p>Equipe Cabana de Brincar</p>
`

var (
	paymentTextTmpl = texttemplate.Must(texttemplate.New("payment_text").Parse(paymentText))
	paymentHTMLTmpl = htmltemplate.Must(htmltemplate.New("payment_html").Parse(paymentHTML))
)

func paymentMessage(kind enums.PaymentKind) string {
	switch kind {
	case enums.PaymentKindSinal:
		return "Sua data está reservada! O restante pode ser pago até o dia da festa."
	case enums.PaymentKindRestante:
		return "Pagamento concluído. Agora é só aguardar o grande dia!"
	case enums.PaymentKindIntegral:
		return "Pagamento integral confirmado com desconto. Sua data está garantida!"
	case enums.PaymentKindPegueMonte:
		return "Seu kit Pegue e Monte está reservado. Combinaremos a retirada pelo WhatsApp."
	}
	return "Obrigado pela preferência!"
}

// PaymentConfirmation renders the confirmation email for a reconciled payment.
// It returns false when the order has no email address.
func PaymentConfirmation(order *models.Orcamento, kind enums.PaymentKind, amount decimal.Decimal) (Message, bool, error) {
	if order == nil || order.Email == nil || strings.TrimSpace(*order.Email) == "" {
		return Message{}, false, nil
	}

	view := paymentView{
		Nome:      order.Nome,
		PedidoID:  order.ID,
		DataFesta: order.DataFesta.Format("02/01/2006"),
		Valor:     formatBRL(amount),
		Tipo:      kind.Label(),
		Mensagem:  paymentMessage(kind),
	}

	var text, html bytes.Buffer
	if err := paymentTextTmpl.Execute(&text, view); err != nil {
		return Message{}, false, fmt.Errorf("render text body: %w", err)
	}
	if err := paymentHTMLTmpl.Execute(&html, view); err != nil {
		return Message{}, false, fmt.Errorf("render html body: %w", err)
	}

	return Message{
		To:       strings.TrimSpace(*order.Email),
		Subject:  fmt.Sprintf("Pagamento confirmado - Pedido #%d", order.ID),
		TextBody: text.String(),
		HTMLBody: html.String(),
		OrderID:  order.ID,
	}, true, nil
}

// formatBRL renders 1234.5 as 1.234,50.
func formatBRL(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + grouped.String() + "," + frac
}
