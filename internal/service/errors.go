package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model/dto"
)

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrWorkshopNotFound     = errors.New("工作坊不存在")
	ErrPackageNotFound      = errors.New("套餐不存在或不属于该工作坊")
	ErrSubscriptionNotFound = errors.New("订阅不存在")
	ErrGiftNotFound         = errors.New("礼物不存在")
	ErrCreditTxNotFound     = errors.New("余额流水不存在")
	ErrProductNotFound      = errors.New("商品不存在")

	ErrDuplicateSubscription = errors.New("用户已有该工作坊的有效订阅")
	ErrInvalidAmount         = errors.New("金额无效")
	ErrInvalidPaymentMethod  = errors.New("支付方式无效")
	ErrInvalidAttendance     = errors.New("参加方式无效")
	ErrInsufficientCredit    = errors.New("余额不足")
	ErrCreditExceedsTotal    = errors.New("抵扣金额超过应付金额")
	ErrOutOfStock            = errors.New("库存不足")
	ErrSubscriptionDeleted   = errors.New("订阅在回收站中")
	ErrNotInTrash            = errors.New("只能永久删除回收站中的记录")
	ErrInvalidTransfer       = errors.New("转课目标与当前订阅相同")
	ErrDonationEntry         = errors.New("捐赠记录不能执行该操作")

	ErrNotDonation              = errors.New("该订阅不是捐赠记录")
	ErrDonationWorkshopMismatch = errors.New("捐赠不属于该工作坊")
	ErrInsufficientDonation     = errors.New("捐赠余额不足")
	ErrDonationBalanceRemaining = errors.New("捐赠仍有余额，不能删除")
	ErrInvalidReclaimMode       = errors.New("收回方式无效")

	ErrGiftAlreadyClaimed = errors.New("礼物已被领取")
	ErrGiftDeleted        = errors.New("礼物在回收站中")
	ErrContactRequired    = errors.New("请提供手机号或邮箱")
	ErrInvalidGiftTarget  = dto.ErrInvalidGiftTarget

	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrPhoneExists        = errors.New("手机号已被注册")
	ErrInvalidCredentials = errors.New("账号或密码错误")

	ErrInvalidTransition = ledger.ErrInvalidTransition
)

// notFound 将 gorm 的 ErrRecordNotFound 转为业务错误
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
