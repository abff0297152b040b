// marketctl — консольный клиент кампусного маркетплейса.
// Работает поверх HTTP API сервера: вход, каталог, заказы, модерация.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"example.com/campus-market/admin"
	"example.com/campus-market/api"
	"example.com/campus-market/auth"
	"example.com/campus-market/catalog"
	"example.com/campus-market/order"
	"example.com/campus-market/pkg/circuitbreaker"
	"example.com/campus-market/pkg/config"
	"example.com/campus-market/pkg/logger"
	"example.com/campus-market/pkg/tracing"
	"example.com/campus-market/session"
)

const usage = `marketctl — клиент кампусного маркетплейса

Команды:
  login -u <логин> -p <пароль>   вход
  logout                         выход
  whoami                         текущий пользователь
  register                       регистрация (-u, -p, -email, -phone)

  categories                     список категорий
  products [-q <слово>] [-cat N] список товаров
  product -id N                  карточка товара
  my-products                    мои товары
  favorites                      избранное
  favorite -id N                 добавить в избранное
  unfavorite -id N               убрать из избранного

  orders [-view buyer|seller]    мои заказы
  order -id N                    карточка заказа
  buy -product N [-qty N]        создать заказ (встреча)
  cancel -id N                   отменить заказ
  deliver -id N                  отметить отправку
  confirm -id N                  подтвердить получение
  review -id N -rating N         оценить сделку

  admin-stats                    сводка администратора
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
	})
	log := logger.With().Str("service", cfg.App.Name).Logger()

	shutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.App.Name,
		JaegerEndpoint: cfg.Jaeger.OTLPEndpoint(),
		Enabled:        cfg.Jaeger.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации tracing")
	}
	defer func() { _ = shutdown(context.Background()) }()

	storage, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка создания хранилища сессии")
	}

	store, err := session.NewStore(storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка восстановления сессии")
	}

	// Circuit Breaker защищает от лавины запросов к лежащему серверу.
	httpClient := &http.Client{
		Timeout:   cfg.API.Timeout,
		Transport: circuitbreaker.Transport(circuitbreaker.New("marketplace-api"), nil),
	}

	client, err := api.NewClient(api.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: httpClient,
		Session:    store,
		Notifier: func(message string) {
			fmt.Fprintln(os.Stderr, message)
		},
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "Выполните вход: marketctl login -u <логин> -p <пароль>")
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка создания API клиента")
	}

	app := &application{
		session: store,
		auth:    auth.NewService(client, store),
		catalog: catalog.NewService(client),
		orders:  order.NewService(client, store),
		admin:   admin.NewService(client, store),
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Сквозной trace_id на весь запуск команды.
	ctx := logger.WithTraceID(context.Background(), uuid.New().String())

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Команда завершилась с ошибкой")
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

// newStorage выбирает долговременное хранилище сессии по конфигурации.
func newStorage(cfg *config.Config) (session.Storage, error) {
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return session.NewRedisStorage(client, cfg.Redis.KeyPrefix), nil
	case "file", "":
		path, err := cfg.Session.ResolveFilePath()
		if err != nil {
			return nil, err
		}
		return session.NewFileStorage(path)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд сессии: %q", cfg.Session.Backend)
	}
}

// application связывает сервисы клиента с подкомандами CLI.
type application struct {
	session *session.Store
	auth    *auth.Service
	catalog *catalog.Service
	orders  *order.Service
	admin   *admin.Service
}

func (a *application) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.auth.Logout()
		fmt.Println("Выход выполнен")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "register":
		return a.register(ctx, args)
	case "categories":
		return a.categories(ctx)
	case "products":
		return a.products(ctx, args)
	case "product":
		return a.product(ctx, args)
	case "my-products":
		return a.myProducts(ctx)
	case "favorites":
		return a.favorites(ctx)
	case "favorite":
		return a.favorite(ctx, args, true)
	case "unfavorite":
		return a.favorite(ctx, args, false)
	case "orders":
		return a.listOrders(ctx, args)
	case "order":
		return a.showOrder(ctx, args)
	case "buy":
		return a.buy(ctx, args)
	case "cancel":
		return a.orderAction(ctx, args, a.orders.Cancel, "Заказ отменён")
	case "deliver":
		return a.orderAction(ctx, args, a.orders.Deliver, "Отправка отмечена")
	case "confirm":
		return a.orderAction(ctx, args, a.orders.ConfirmReceive, "Получение подтверждено")
	case "review":
		return a.review(ctx, args)
	case "admin-stats":
		return a.adminStats(ctx)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("неизвестная команда %q", command)
	}
}

func (a *application) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	account := fs.String("u", "", "логин или email")
	password := fs.String("p", "", "пароль")
	_ = fs.Parse(args)

	user, err := a.auth.Login(ctx, *account, *password)
	if err != nil {
		return err
	}

	fmt.Printf("Вход выполнен: %s (%s)\n", user.Username, user.Role)
	return nil
}

func (a *application) whoami(ctx context.Context) error {
	if !a.session.Authenticated() {
		fmt.Println("Вход не выполнен")
		return nil
	}

	user, err := a.auth.UserInfo(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s (id %d, роль %s)\n", user.Username, user.ID, user.Role)
	if expiry, ok := a.session.TokenExpiry(); ok {
		fmt.Printf("Токен действителен до %s\n", expiry.Local().Format(time.RFC3339))
	}
	return nil
}

func (a *application) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("u", "", "имя пользователя")
	password := fs.String("p", "", "пароль")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "телефон")
	department := fs.String("dept", "", "факультет")
	_ = fs.Parse(args)

	err := a.auth.Register(ctx, auth.RegisterRequest{
		Username:   *username,
		Password:   *password,
		Email:      *email,
		Phone:      *phone,
		Department: *department,
	})
	if err != nil {
		return err
	}

	fmt.Println("Регистрация выполнена, теперь выполните вход")
	return nil
}

func (a *application) categories(ctx context.Context) error {
	categories, err := a.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("%4d  %s\n", c.ID, c.Name)
	}
	return nil
}

func (a *application) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	keyword := fs.String("q", "", "поисковое слово")
	categoryID := fs.Int64("cat", 0, "категория")
	page := fs.Int("page", 1, "страница")
	_ = fs.Parse(args)

	result, err := a.catalog.Products(ctx, catalog.Query{
		Keyword:    *keyword,
		CategoryID: *categoryID,
		Sort:       catalog.SortLatest,
		PageNum:    *page,
		PageSize:   10,
	})
	if err != nil {
		return err
	}

	for _, p := range result.List {
		fmt.Printf("%6d  %8.2f  %s\n", p.ID, p.Price, p.Title)
	}
	fmt.Printf("Всего: %d\n", result.Total)
	return nil
}

func (a *application) product(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	p, err := a.catalog.Product(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func (a *application) myProducts(ctx context.Context) error {
	result, err := a.catalog.MyProducts(ctx, 1, 20, nil)
	if err != nil {
		return err
	}
	for _, p := range result.List {
		fmt.Printf("%6d  %8.2f  [%d]  %s\n", p.ID, p.Price, p.Status, p.Title)
	}
	return nil
}

func (a *application) favorites(ctx context.Context) error {
	result, err := a.catalog.Favorites(ctx, 1, 20)
	if err != nil {
		return err
	}
	for _, p := range result.List {
		fmt.Printf("%6d  %8.2f  %s\n", p.ID, p.Price, p.Title)
	}
	return nil
}

func (a *application) favorite(ctx context.Context, args []string, add bool) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	if add {
		if err := a.catalog.Favorite(ctx, id); err != nil {
			return err
		}
		fmt.Println("Добавлено в избранное")
		return nil
	}

	if err := a.catalog.Unfavorite(ctx, id); err != nil {
		return err
	}
	fmt.Println("Убрано из избранного")
	return nil
}

func (a *application) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	view := fs.String("view", "buyer", "ракурс: buyer или seller")
	page := fs.Int("page", 1, "страница")
	_ = fs.Parse(args)

	result, err := a.orders.List(ctx, order.Query{
		ViewType: order.ViewType(*view),
		PageNum:  *page,
		PageSize: 10,
	})
	if err != nil {
		return err
	}

	for _, o := range result.List {
		fmt.Printf("%6d  %-12s  %8.2f  %-18s  %s\n",
			o.ID, o.OrderNo, o.TotalAmount, o.Status, o.ProductTitle)
	}
	fmt.Printf("Всего: %d\n", result.Total)
	return nil
}

func (a *application) showOrder(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	o, err := a.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(o)
}

func (a *application) buy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	productID := fs.Int64("product", 0, "товар")
	quantity := fs.Int("qty", 1, "количество")
	remark := fs.String("remark", "", "комментарий продавцу")
	_ = fs.Parse(args)

	created, err := a.orders.Create(ctx, order.CreateRequest{
		ProductID:       *productID,
		Quantity:        *quantity,
		TransactionType: order.TransactionMeet,
		Remark:          *remark,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Заказ %s создан (id %d)\n", created.OrderNo, created.ID)
	return nil
}

func (a *application) orderAction(ctx context.Context, args []string, action func(context.Context, int64) error, done string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := action(ctx, id); err != nil {
		return err
	}
	fmt.Println(done)
	return nil
}

func (a *application) review(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	id := fs.Int64("id", 0, "заказ")
	rating := fs.Int("rating", 0, "оценка 1-5")
	comment := fs.String("comment", "", "комментарий")
	_ = fs.Parse(args)

	err := a.orders.Review(ctx, order.ReviewRequest{
		OrderID: *id,
		Rating:  *rating,
		Comment: *comment,
	})
	if err != nil {
		return err
	}

	fmt.Println("Спасибо за оценку")
	return nil
}

func (a *application) adminStats(ctx context.Context) error {
	stats, err := a.admin.DashboardStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Пользователей:      %d\n", stats.UserCount)
	fmt.Printf("Товаров:            %d\n", stats.ProductCount)
	fmt.Printf("Заказов:            %d\n", stats.OrderCount)
	fmt.Printf("Оборот:             %.2f\n", stats.TotalAmount)
	fmt.Printf("Ожидают модерации:  %d\n", stats.PendingReviewCount)
	return nil
}

// parseID извлекает -id из аргументов подкоманды.
func parseID(args []string) (int64, error) {
	fs := flag.NewFlagSet("id", flag.ExitOnError)
	id := fs.Int64("id", 0, "идентификатор")
	_ = fs.Parse(args)

	if *id <= 0 {
		return 0, fmt.Errorf("требуется положительный -id")
	}
	return *id, nil
}

// printJSON печатает значение с отступами.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
