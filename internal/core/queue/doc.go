// Package queue 实现与引擎无关的通道内核
//
//   - Chan：多生产者单消费者队列，容量为 0 表示无界
//   - Oneshot：只传递一个值的通道
//
// 有界队列的空位由 locks 包同款 FIFO 信号量管理，满时发送者按到达顺序排队。
// 同一发送者的值按发送顺序到达；不同发送者之间只保证各自有序。
//
// 内核只返回 types 包的哨兵错误，引擎在外层包装为各自的错误类型。
package queue
