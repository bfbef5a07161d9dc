package bot

const (
	ctxContext = "context"
	ctxUser    = "user"
	ctxNewUser = "new_user"
)

const (
	cbkLanguage          = "language"
	cbkCheckSubscription = "check_subscription"
	cbkCarsListPage      = "cars_list_page"
	cbkCar               = "car"
	cbkBuyCar            = "buy_car"
	cbkTopUp             = "top_up"
	cbkCancel            = "cancel"
)

const (
	msgDefaultError        = "unknown_error"
	msgNeedSubscribe       = "need_subscribe"
	msgStart               = "start"
	msgSubscriptionSuccess = "subscription_success"
	msgSubscriptionFailed  = "subscription_failed"
	msgLanguage            = "select_language"
	msgProfile             = "profile"
	msgCarsList            = "cars_list"
	msgCarsListEmpty       = "cars_list_empty"
	msgCar                 = "car"
	msgCarBought           = "car_bought"
	msgInsufficientFunds   = "insufficient_funds"
	msgTopUp               = "top_up"
	msgTopUpInvoice        = "top_up_invoice"
	msgTopUpUnavailable    = "top_up_unavailable"
	msgTopUpPaid           = "top_up_paid"
	msgEnterPromocode      = "enter_promocode"
	msgPromocodeRedeemed   = "promocode_redeemed"
	msgPromocodeInvalid    = "promocode_invalid"
	msgPromocodeUsed       = "promocode_used"
	msgPromocodeNotFound   = "promocode_not_found"
	msgPromocodeExpired    = "promocode_expired"
	msgPromocodeError      = "promocode_error"
	msgCancelled           = "cancelled"
	msgHistory             = "history"
	msgHistoryEmpty        = "history_empty"
	msgHistoryPurchase     = "history_purchase"
	msgHistoryEarning      = "history_earning"
	msgHistoryRedemption   = "history_redemption"
	msgUnknownCommand      = "unknown_command"
)

const (
	btnSubscribe      = "button_subscribe"
	btnSubscribed     = "button_subscribed"
	btnLanguage       = "button_language"
	btnProfile        = "button_profile"
	btnCarsList       = "button_cars_list"
	btnTopUp          = "button_top_up"
	btnTopUpPackage   = "button_top_up_package"
	btnPay            = "button_pay"
	btnEnterPromocode = "button_enter_promocode"
	btnHistory        = "button_history"
	btnCancel         = "button_cancel"
	btnNextPage       = "button_next_page"
	btnPreviousPage   = "button_previous_page"
	btnCar            = "button_car"
	btnBuy            = "button_buy"
	btnBack           = "button_back"
)

// Reply keyboard buttons of the main menu.
var menuButtons = []string{btnProfile, btnCarsList, btnTopUp, btnEnterPromocode, btnHistory}
