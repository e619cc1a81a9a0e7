package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"orderdesk/internal/app/store/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProductRepositoryTestSuite тестовый suite для PostgreSQL repository
type ProductRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ProductRepository
	sqlDB *sql.DB
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(s.T(), err)

	s.repo = NewProductRepository(s.db)
}

func (s *ProductRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== GetByID Tests =====================

func (s *ProductRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"product_id", "name", "description", "price", "created_at"}).
		AddRow("prod-aaaa1111", "Keyboard", "Mechanical", 49.99, createdAt)

	s.mock.ExpectQuery(`SELECT (.+) FROM "products" WHERE product_id = (.+)`).
		WithArgs("prod-aaaa1111", 1).
		WillReturnRows(rows)

	// Act
	product, err := s.repo.GetByID(ctx, "prod-aaaa1111")

	// Assert
	s.NoError(err)
	s.NotNil(product)
	s.Equal("prod-aaaa1111", product.ID)
	s.Equal("Keyboard", product.Name)
	s.Equal(49.99, product.Price)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT (.+) FROM "products" WHERE product_id = (.+)`).
		WithArgs("prod-missing1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}))

	// Act
	product, err := s.repo.GetByID(ctx, "prod-missing1")

	// Assert
	s.Nil(product)
	s.ErrorIs(err, ErrProductNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetByID_DBError() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT (.+) FROM "products" WHERE product_id = (.+)`).
		WithArgs("prod-aaaa1111", 1).
		WillReturnError(sql.ErrConnDone)

	// Act
	product, err := s.repo.GetByID(ctx, "prod-aaaa1111")

	// Assert
	s.Error(err)
	s.Nil(product)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Create Tests =====================

func (s *ProductRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()

	product := &entity.Product{
		ID:          "prod-aaaa1111",
		Name:        "Keyboard",
		Description: "Mechanical",
		Price:       49.99,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Create(ctx, product)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestCreate_DuplicateKey() {
	ctx := context.Background()

	product := &entity.Product{ID: "prod-aaaa1111", Name: "Keyboard", Price: 49.99}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnError(gorm.ErrDuplicatedKey)
	s.mock.ExpectRollback()

	// Act
	err := s.repo.Create(ctx, product)

	// Assert
	s.ErrorIs(err, ErrDuplicateID)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Update Tests =====================

func (s *ProductRepositoryTestSuite) TestUpdate_Success() {
	ctx := context.Background()

	product := &entity.Product{
		ID:          "prod-aaaa1111",
		Name:        "Keyboard v2",
		Description: "Updated",
		Price:       59.99,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Update(ctx, product)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestUpdate_NotFound() {
	ctx := context.Background()

	product := &entity.Product{ID: "prod-missing1", Name: "Ghost", Price: 1.0}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 rows affected
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Update(ctx, product)

	// Assert
	s.ErrorIs(err, ErrProductNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *ProductRepositoryTestSuite) TestDelete_Success() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, "prod-aaaa1111")

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, "prod-missing1")

	// Assert
	s.ErrorIs(err, ErrProductNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Exists Tests =====================

func (s *ProductRepositoryTestSuite) TestExists_True() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WithArgs("prod-aaaa1111").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	// Act
	exists, err := s.repo.Exists(ctx, "prod-aaaa1111")

	// Assert
	s.NoError(err)
	s.True(exists)
}

func (s *ProductRepositoryTestSuite) TestExists_False() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WithArgs("prod-missing1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// Act
	exists, err := s.repo.Exists(ctx, "prod-missing1")

	// Assert
	s.NoError(err)
	s.False(exists)
}

// ===================== GetAll Tests =====================

func (s *ProductRepositoryTestSuite) TestGetAll_EmptyTableReturnsEmptySlice() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT (.+) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "description", "price", "created_at"}))

	// Act
	products, err := s.repo.GetAll(ctx)

	// Assert - пустая таблица дает непустой слайс, а не nil
	s.NoError(err)
	s.NotNil(products)
	s.Len(products, 0)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Count Tests =====================

func (s *ProductRepositoryTestSuite) TestCount() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	// Act
	count, err := s.repo.Count(ctx)

	// Assert
	s.NoError(err)
	s.Equal(int64(42), count)
}

// ===================== Stream Tests =====================

func (s *ProductRepositoryTestSuite) TestStreamAll_IteratesAllRows() {
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"product_id", "name", "description", "price", "created_at"}).
		AddRow("prod-aaaa1111", "Keyboard", "", 49.99, time.Now()).
		AddRow("prod-bbbb2222", "Mouse", "", 25.0, time.Now())

	s.mock.ExpectQuery(`SELECT (.+) FROM "products"`).WillReturnRows(rows)

	// Act
	cursor, err := s.repo.StreamAll(ctx)

	// Assert
	s.NoError(err)
	defer cursor.Close()

	var ids []string
	for cursor.Next() {
		product, err := cursor.Product()
		s.NoError(err)
		ids = append(ids, product.ID)
	}

	s.NoError(cursor.Err())
	s.Equal([]string{"prod-aaaa1111", "prod-bbbb2222"}, ids)
}

func (s *ProductRepositoryTestSuite) TestStreamByName_AppliesFilterAndLimit() {
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"product_id", "name", "description", "price", "created_at"}).
		AddRow("prod-aaaa1111", "Keyboard", "", 49.99, time.Now())

	s.mock.ExpectQuery(`SELECT (.+) FROM "products" WHERE UPPER\(name\) LIKE UPPER\((.+)\) LIMIT (.+)`).
		WithArgs("%key%", 10).
		WillReturnRows(rows)

	// Act
	cursor, err := s.repo.StreamByName(ctx, "key", 10)

	// Assert
	s.NoError(err)
	defer cursor.Close()

	s.True(cursor.Next())
	product, err := cursor.Product()
	s.NoError(err)
	s.Equal("Keyboard", product.Name)
	s.False(cursor.Next())
}
