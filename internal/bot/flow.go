// Package bot drives the chat front-end. Each incoming message is routed by
// command or, inside a multi-step conversation, by the session's step.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/services"
	"cargodesk/internal/utils/logger"

	"github.com/go-playground/validator/v10"
)

type ClientDirectory interface {
	FindByTelegramID(ctx context.Context, telegramID string) (*models.Client, error)
	RegisterViaChat(ctx context.Context, telegramID string, in services.RegisterClientInput) (*models.Client, error)
	VerifyByTelegram(ctx context.Context, telegramID, code string) (*models.Client, error)
	ResendCode(ctx context.Context, telegramID string) error
}

type OrderPlacer interface {
	Create(ctx context.Context, in services.CreateOrderInput) (*models.Order, error)
	ListForClient(ctx context.Context, clientID uint64, page services.Page) ([]models.Order, services.Pagination, error)
}

type ProductCatalog interface {
	ListAvailableProducts(ctx context.Context, page services.Page) ([]models.Product, services.Pagination, error)
	DefaultCurrency(ctx context.Context) (*models.CurrencyType, error)
}

const (
	menuSize   = 20
	ordersSize = 10
)

const (
	msgHelp = "Commands:\n" +
		"/start - account status\n" +
		"/register - create an account\n" +
		"/verify <code> - activate your account\n" +
		"/resend - get a new verification code\n" +
		"/order - place an order\n" +
		"/orders - your recent orders\n" +
		"/cancel - abort the current step"
	msgFailure       = "Something went wrong. Please try again."
	msgNotRegistered = "You are not registered yet. Use /register to create an account."
	msgNotVerified   = "Your account is not verified yet. Send /verify <code> or /resend for a new code."
	msgYesNo         = "Please answer yes or no."
)

type Flow struct {
	clients  ClientDirectory
	orders   OrderPlacer
	catalog  ProductCatalog
	sessions SessionStore
	validate *validator.Validate
	log      *logger.Logger
}

func NewFlow(clients ClientDirectory, orders OrderPlacer, catalog ProductCatalog, sessions SessionStore) *Flow {
	return &Flow{
		clients:  clients,
		orders:   orders,
		catalog:  catalog,
		sessions: sessions,
		validate: validator.New(),
		log:      logger.New("bot"),
	}
}

// Handle processes one message from chatID and returns the reply text.
// Business failures become replies; only infrastructure failures are returned.
func (f *Flow) Handle(ctx context.Context, chatID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if chatID == "" {
		return "", errs.InvalidRequest("chat id is required")
	}

	if strings.HasPrefix(text, "/") {
		command, arg, _ := strings.Cut(text, " ")
		return f.command(ctx, chatID, strings.ToLower(command), strings.TrimSpace(arg))
	}

	session, err := f.sessions.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return msgHelp, nil
	}

	var reply string
	switch session.Flow {
	case flowRegister:
		reply, err = f.registerStep(ctx, chatID, session, text)
	case flowOrder:
		reply, err = f.orderStep(ctx, chatID, session, text)
	default:
		err = f.sessions.Delete(ctx, chatID)
		reply = msgHelp
	}
	if err != nil {
		return f.fail(ctx, chatID, err)
	}
	return reply, nil
}

func (f *Flow) command(ctx context.Context, chatID, command, arg string) (string, error) {
	var (
		reply string
		err   error
	)
	switch command {
	case "/start":
		reply, err = f.start(ctx, chatID)
	case "/register":
		reply, err = f.beginRegistration(ctx, chatID)
	case "/verify":
		reply, err = f.verify(ctx, chatID, arg)
	case "/resend":
		reply, err = f.resend(ctx, chatID)
	case "/order":
		reply, err = f.beginOrder(ctx, chatID)
	case "/orders":
		reply, err = f.listOrders(ctx, chatID)
	case "/cancel":
		reply, err = f.cancel(ctx, chatID)
	default:
		reply = msgHelp
	}
	if err != nil {
		return f.fail(ctx, chatID, err)
	}
	return reply, nil
}

// fail turns an unexpected error into a generic reply and resets the chat.
func (f *Flow) fail(ctx context.Context, chatID string, err error) (string, error) {
	if errs.KindOf(err) != errs.KindInternal {
		return err.Error(), nil
	}
	f.log.Warn("Chat %s failed: %v", chatID, err)
	if delErr := f.sessions.Delete(ctx, chatID); delErr != nil {
		return "", delErr
	}
	return msgFailure, nil
}

// lookup returns the chat's client or nil when the chat is unknown.
func (f *Flow) lookup(ctx context.Context, chatID string) (*models.Client, error) {
	client, err := f.clients.FindByTelegramID(ctx, chatID)
	if errs.Is(err, errs.KindNotFound) {
		return nil, nil
	}
	return client, err
}

func (f *Flow) start(ctx context.Context, chatID string) (string, error) {
	client, err := f.lookup(ctx, chatID)
	if err != nil {
		return "", err
	}
	switch {
	case client == nil:
		return "Welcome!\n\nPlease use /register to create an account.", nil
	case !client.IsActive:
		return fmt.Sprintf("Welcome back, %s.\n\n%s", client.FullName, msgNotVerified), nil
	default:
		return fmt.Sprintf("Welcome back, %s.\n\nUse /order to place an order or /orders to see your orders.", client.FullName), nil
	}
}

func (f *Flow) beginRegistration(ctx context.Context, chatID string) (string, error) {
	client, err := f.lookup(ctx, chatID)
	if err != nil {
		return "", err
	}
	if client != nil {
		return "You are already registered.\n\nUse /start to see your account.", nil
	}
	if err := f.sessions.Save(ctx, chatID, &Session{Flow: flowRegister, Step: stepFullName}); err != nil {
		return "", err
	}
	return "Registration\n\nPlease enter your full name:", nil
}

func (f *Flow) registerStep(ctx context.Context, chatID string, s *Session, text string) (string, error) {
	var reply string
	switch s.Step {
	case stepFullName:
		if text == "" {
			return "Please enter your full name:", nil
		}
		s.FullName = text
		s.Step = stepPhone
		reply = "Enter your phone number:"
	case stepPhone:
		if err := f.validate.Var(text, "required,e164"); err != nil {
			return "Invalid phone number\n\nEnter it in international format, e.g. +998901234567:", nil
		}
		s.PhoneNumber = text
		s.Step = stepEmail
		reply = "Enter your email:"
	case stepEmail:
		if err := f.validate.Var(text, "required,email"); err != nil {
			return "Invalid email format\n\nPlease enter valid email:", nil
		}
		s.Email = text
		s.Step = stepAddress
		reply = "Enter your address:"
	case stepAddress:
		s.Address = text
		s.Step = stepConfirmReg
		reply = fmt.Sprintf("Confirm Registration\n\nName: %s\nPhone: %s\nEmail: %s\nAddress: %s\n\nReply yes to confirm or no to cancel.",
			s.FullName, s.PhoneNumber, s.Email, s.Address)
	case stepConfirmReg:
		return f.confirmRegistration(ctx, chatID, s, text)
	}

	if err := f.sessions.Save(ctx, chatID, s); err != nil {
		return "", err
	}
	return reply, nil
}

func (f *Flow) confirmRegistration(ctx context.Context, chatID string, s *Session, text string) (string, error) {
	yes, ok := parseYesNo(text)
	if !ok {
		return msgYesNo, nil
	}
	if err := f.sessions.Delete(ctx, chatID); err != nil {
		return "", err
	}
	if !yes {
		return "Registration cancelled.", nil
	}

	client, err := f.clients.RegisterViaChat(ctx, chatID, services.RegisterClientInput{
		FullName:    s.FullName,
		PhoneNumber: s.PhoneNumber,
		Email:       s.Email,
		Address:     s.Address,
		Location:    s.Address,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Registration successful\n\nA verification code was sent to %s.\nSend /verify <code> to activate your account.", client.Email), nil
}

func (f *Flow) verify(ctx context.Context, chatID, code string) (string, error) {
	if code == "" {
		return "Usage: /verify <code>", nil
	}
	_, err := f.clients.VerifyByTelegram(ctx, chatID, code)
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return msgNotRegistered, nil
	case errs.KindExpired:
		return "Your code has expired.\n\nSend /resend to get a new one.", nil
	case errs.KindInvalidCode:
		return "That code is not correct. Please try again.", nil
	case errs.KindConflict:
		return "Your account is already verified.", nil
	}
	if err != nil {
		return "", err
	}
	return "Account verified successfully\n\nUse /order to place an order.", nil
}

func (f *Flow) resend(ctx context.Context, chatID string) (string, error) {
	err := f.clients.ResendCode(ctx, chatID)
	if errs.Is(err, errs.KindNotFound) {
		return msgNotRegistered, nil
	}
	if err != nil {
		return "", err
	}
	return "A new verification code was sent to your email.", nil
}

func (f *Flow) activeClient(ctx context.Context, chatID string) (*models.Client, string, error) {
	client, err := f.lookup(ctx, chatID)
	if err != nil {
		return nil, "", err
	}
	if client == nil {
		return nil, msgNotRegistered, nil
	}
	if !client.IsActive {
		return nil, msgNotVerified, nil
	}
	return client, "", nil
}

func (f *Flow) beginOrder(ctx context.Context, chatID string) (string, error) {
	client, reply, err := f.activeClient(ctx, chatID)
	if client == nil {
		return reply, err
	}

	products, _, err := f.catalog.ListAvailableProducts(ctx, services.NewPage(1, menuSize))
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "No products are available right now.", nil
	}

	s := &Session{Flow: flowOrder, Step: stepProduct}
	for _, p := range products {
		s.Choices = append(s.Choices, DraftItem{ProductID: p.ID, Name: p.Name})
	}
	if err := f.sessions.Save(ctx, chatID, s); err != nil {
		return "", err
	}
	return "New order\n\n" + productMenu(products), nil
}

func productMenu(products []models.Product) string {
	var b strings.Builder
	b.WriteString("Choose a product by number:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Name, p.Price.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}

func choiceMenu(choices []DraftItem) string {
	var b strings.Builder
	b.WriteString("Choose a product by number:\n")
	for i, c := range choices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *Flow) orderStep(ctx context.Context, chatID string, s *Session, text string) (string, error) {
	var reply string
	switch s.Step {
	case stepProduct:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > len(s.Choices) {
			return "Invalid choice\n\n" + choiceMenu(s.Choices), nil
		}
		choice := s.Choices[n-1]
		s.Pending = &choice
		s.Step = stepQuantity
		reply = fmt.Sprintf("%s\n\nEnter quantity:", choice.Name)
	case stepQuantity:
		qty, err := strconv.Atoi(text)
		if err != nil || qty <= 0 || s.Pending == nil {
			return "Invalid quantity\n\nEnter valid number:", nil
		}
		s.Items = mergeItem(s.Items, DraftItem{ProductID: s.Pending.ProductID, Name: s.Pending.Name, Quantity: qty})
		s.Pending = nil
		s.Step = stepMore
		reply = "Add another product? (yes/no)"
	case stepMore:
		yes, ok := parseYesNo(text)
		if !ok {
			return msgYesNo, nil
		}
		if yes {
			s.Step = stepProduct
			reply = choiceMenu(s.Choices)
		} else {
			s.Step = stepDescription
			reply = "Enter description (optional):\n\nOr type \"skip\""
		}
	case stepDescription:
		if !strings.EqualFold(text, "skip") {
			s.Description = text
		}
		s.Step = stepConfirm
		reply = orderSummary(s) + "\n\nReply yes to place the order or no to cancel."
	case stepConfirm:
		return f.confirmOrder(ctx, chatID, s, text)
	}

	if err := f.sessions.Save(ctx, chatID, s); err != nil {
		return "", err
	}
	return reply, nil
}

// mergeItem adds item, summing quantities when the product is already in the draft.
func mergeItem(items []DraftItem, item DraftItem) []DraftItem {
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

func orderSummary(s *Session) string {
	var b strings.Builder
	b.WriteString("Order Summary\n")
	for _, item := range s.Items {
		fmt.Fprintf(&b, "\n%s x %d", item.Name, item.Quantity)
	}
	description := s.Description
	if description == "" {
		description = "N/A"
	}
	fmt.Fprintf(&b, "\n\nDescription: %s", description)
	return b.String()
}

func (f *Flow) confirmOrder(ctx context.Context, chatID string, s *Session, text string) (string, error) {
	yes, ok := parseYesNo(text)
	if !ok {
		return msgYesNo, nil
	}
	if err := f.sessions.Delete(ctx, chatID); err != nil {
		return "", err
	}
	if !yes {
		return "Order cancelled.", nil
	}

	client, reply, err := f.activeClient(ctx, chatID)
	if client == nil {
		return reply, err
	}
	currency, err := f.catalog.DefaultCurrency(ctx)
	if errs.Is(err, errs.KindNotFound) {
		return "No currencies available.", nil
	}
	if err != nil {
		return "", err
	}

	items := make([]services.OrderItemInput, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, services.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := f.orders.Create(ctx, services.CreateOrderInput{
		ClientID:       client.ID,
		CurrencyTypeID: currency.ID,
		Items:          items,
		Description:    s.Description,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Order %s placed\n\nTotal: %s %s", order.OrderUniqueID, order.Summa.StringFixed(2), currency.Name), nil
}

func (f *Flow) listOrders(ctx context.Context, chatID string) (string, error) {
	client, reply, err := f.activeClient(ctx, chatID)
	if client == nil {
		return reply, err
	}

	orders, page, err := f.orders.ListForClient(ctx, client.ID, services.NewPage(1, ordersSize))
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "You have no orders yet. Use /order to place one.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your orders (%d of %d):\n", len(orders), page.Total)
	for _, o := range orders {
		status := o.CurrentStatus
		if o.IsCancelled {
			status = "Cancelled"
		}
		fmt.Fprintf(&b, "\n%s | %s | %s", o.OrderUniqueID, status, o.Summa.StringFixed(2))
	}
	return b.String(), nil
}

func (f *Flow) cancel(ctx context.Context, chatID string) (string, error) {
	s, err := f.sessions.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "Nothing to cancel.", nil
	}
	if err := f.sessions.Delete(ctx, chatID); err != nil {
		return "", err
	}
	return "Cancelled.", nil
}

func parseYesNo(text string) (yes bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "confirm":
		return true, true
	case "no", "n", "cancel":
		return false, true
	}
	return false, false
}
