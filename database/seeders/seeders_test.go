package seeders_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marketplace/app/models"
	_ "github.com/shashiranjanraj/marketplace/database/migrations"
	"github.com/shashiranjanraj/marketplace/database/seeders"
	"github.com/shashiranjanraj/marketplace/pkg/auth"
	"github.com/shashiranjanraj/marketplace/pkg/testkit"
)

func TestRunAllIsIdempotent(t *testing.T) {
	seeders.Out = io.Discard
	db := testkit.OpenDB(t)

	require.NoError(t, seeders.RunAll(db))
	require.NoError(t, seeders.RunAll(db))

	var users, categories, products int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.Product{}).Count(&products)
	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 3, categories)
	assert.EqualValues(t, 3, products)

	var seller models.User
	require.NoError(t, db.Where("role = ?", models.RoleSeller).First(&seller).Error)
	assert.True(t, seller.CanSell())
	assert.True(t, auth.CheckPassword(seller.Password, seeders.DemoPassword))

	var rugs models.Category
	require.NoError(t, db.Where("slug = ?", "rugs").First(&rugs).Error)
	require.NotNil(t, rugs.ParentID)
}
